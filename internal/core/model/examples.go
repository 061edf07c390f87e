// Copyright 2025 Content Forge, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

// GetExampleSemanticSummary returns a fully populated SemanticSummary used as
// the few-shot JSON example in the analysis prompt. Giving the model a
// complete, well-formed instance of the expected structure makes the response
// shape far more reliable than a bare schema description.
func GetExampleSemanticSummary() *SemanticSummary {
	return &SemanticSummary{
		MessageEssence:  "A founder explains how small teams can ship faster by cutting meetings",
		KeyTopics:       []string{"productivity", "startup culture", "asynchronous work"},
		KeyEntities:     []string{"Basecamp", "Shape Up"},
		Sentiment:       StrPtr("positive"),
		Intent:          StrPtr("persuade"),
		DominantEmotion: StrPtr("enthusiasm"),
		ToneFormality:   FloatPtr(0.4),
		ToneEnergy:      FloatPtr(0.8),
		ToneWarmth:      FloatPtr(0.6),
		ToneHumor:       FloatPtr(0.3),
		ToneAuthority:   FloatPtr(0.7),
	}
}
