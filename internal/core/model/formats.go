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

// OutputFormat selects the shape of the generated script. The enumeration is
// fixed; the dashboard renders one card per value.
type OutputFormat string

const (
	FormatPodcastScript     OutputFormat = "podcast_script"
	FormatVideoScript       OutputFormat = "video_script"
	FormatBlogPost          OutputFormat = "blog_post"
	FormatTwitterThread     OutputFormat = "twitter_thread"
	FormatInstagramCarousel OutputFormat = "instagram_carousel"
	FormatLinkedInArticle   OutputFormat = "linkedin_article"
	FormatYouTubeScript     OutputFormat = "youtube_script"
	FormatNewsletter        OutputFormat = "newsletter"
	FormatShortFormScript   OutputFormat = "short_form_script"
	FormatPresentation      OutputFormat = "presentation"
	FormatGenericScript     OutputFormat = "generic_script"
)

// OutputFormats lists every supported format in display order.
var OutputFormats = []OutputFormat{
	FormatPodcastScript,
	FormatVideoScript,
	FormatBlogPost,
	FormatTwitterThread,
	FormatInstagramCarousel,
	FormatLinkedInArticle,
	FormatYouTubeScript,
	FormatNewsletter,
	FormatShortFormScript,
	FormatPresentation,
	FormatGenericScript,
}

// formatGuidance maps each format to the style directive handed to the
// generation stage's prompt builder.
var formatGuidance = map[OutputFormat]string{
	FormatPodcastScript:     "a conversational podcast script with host narration, natural spoken transitions, and clear segment breaks",
	FormatVideoScript:       "a video script with scene directions in brackets and spoken lines suitable for voice-over",
	FormatBlogPost:          "a long-form blog post with a hook introduction, markdown headings, and a closing call to action",
	FormatTwitterThread:     "a numbered thread of short posts, each under 280 characters, with a strong opening hook",
	FormatInstagramCarousel: "slide-by-slide carousel copy, one short punchy block per slide with a headline each",
	FormatLinkedInArticle:   "a professional LinkedIn article with an engaging opening line and skimmable short paragraphs",
	FormatYouTubeScript:     "a YouTube script with a cold-open hook, chaptered sections, and an outro with a subscribe prompt",
	FormatNewsletter:        "an email newsletter with a subject line, a personal greeting, scannable sections, and a sign-off",
	FormatShortFormScript:   "a short-form vertical video script under sixty seconds with a hook in the first two lines",
	FormatPresentation:      "presentation speaker notes organized slide by slide with titles and talking points",
	FormatGenericScript:     "a clean, well-structured script in markdown",
}

// Valid reports whether f is one of the fixed enumeration values.
func (f OutputFormat) Valid() bool {
	_, ok := formatGuidance[f]
	return ok
}

// Guidance returns the prompt style directive for the format. Unknown formats
// fall back to the generic directive.
func (f OutputFormat) Guidance() string {
	if g, ok := formatGuidance[f]; ok {
		return g
	}
	return formatGuidance[FormatGenericScript]
}

// Provider names understood at the request boundary. The registry decides at
// runtime which of these are actually configured and healthy.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// ProviderNames lists the providers the request contract accepts.
var ProviderNames = []string{ProviderOllama, ProviderOpenAI, ProviderAnthropic, ProviderGemini}

// ValidProviderName reports whether name is one of the contract's provider
// enum values.
func ValidProviderName(name string) bool {
	for _, p := range ProviderNames {
		if p == name {
			return true
		}
	}
	return false
}
