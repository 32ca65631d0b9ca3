package trace

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// TraceLexer defines the tokens of the .ott text trace format.
var TraceLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments run to end of line
	{Name: "Comment", Pattern: `#[^\n]*`},

	{Name: "Whitespace", Pattern: `[\s\t\n\r]+`},

	// Keywords
	{Name: "KwSampleRate", Pattern: `\bsamplerate\b`},
	{Name: "KwChannels", Pattern: `\bchannels\b`},
	{Name: "KwEnd", Pattern: `\bend\b`},

	// Sample marker, e.g. @120
	{Name: "At", Pattern: `@`},

	// Numbers. Frequency must come before plain numbers so "1MHz" is one token.
	{Name: "Frequency", Pattern: `[0-9]+(?:\.[0-9]+)?[kMG]?Hz`},
	{Name: "Real", Pattern: `[0-9]+\.[0-9]+`},
	{Name: "Integer", Pattern: `[0-9]+`},

	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
})
