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

package config

// Default prompt templates. Deployments override these per environment in
// the TOML files; the defaults keep a bare checkout functional.

// DefaultAnalysisPrompt asks the provider for a semantic summary as strict
// JSON. EXAMPLE_JSON is a fully populated instance of the expected shape.
const DefaultAnalysisPrompt = `You are a content analyst. Read the source content below and produce a JSON
object describing it. Respond with JSON only, no prose and no code fences.

The JSON object must have exactly these fields:
message_essence (string, one sentence), key_topics (array of strings),
key_entities (array of strings), sentiment (string), intent (string),
dominant_emotion (string), tone_formality, tone_energy, tone_warmth,
tone_humor, tone_authority (numbers between 0 and 1).

Example of a valid response:
{{.ExampleJSON}}

Source content:
{{.Content}}`

// DefaultGenerationPrompt renders the script-generation request. The
// instructions block carries the duration-target directive and any
// caller-supplied additional instructions; the guidance block carries
// semantic-analysis hints and, on regeneration, the revision or fresh-take
// directive.
const DefaultGenerationPrompt = `You are an expert content writer. Write {{.FormatGuidance}} in markdown,
based on the source content below.
{{if .OutputDescription}}
The caller describes the desired output as: {{.OutputDescription}}
{{end}}{{if .Instructions}}
Instructions:
{{.Instructions}}
{{end}}{{if .SemanticGuidance}}
Guidance from semantic analysis of the source:
{{.SemanticGuidance}}
{{end}}{{if .RegenerationGuidance}}
{{.RegenerationGuidance}}
{{end}}
Source content:
{{.Content}}

Respond with the finished script only.`

// DefaultRevisionPrompt renders the regeneration guidance for a
// feedback-guided revision.
const DefaultRevisionPrompt = `This is a revision of an earlier version of the script. Revise it according
to this feedback from the caller, keeping everything that was not criticized:
{{.Feedback}}`

// DefaultFreshTakePrompt renders the regeneration guidance for an
// unconstrained fresh take.
const DefaultFreshTakePrompt = `An earlier version of this script already exists. Write an independent fresh
take: take a noticeably different angle, structure, or voice rather than
refining the earlier version.`
