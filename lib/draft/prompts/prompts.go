// Package prompts embeds the chat prompt templates used by the draft writer.
package prompts

import "embed"

//go:embed *.txt
var FS embed.FS
