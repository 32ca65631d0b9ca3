package trace

// File is the parse tree of a .ott trace file.
type File struct {
	Entries []*Entry `@@*`
}

// Entry is one line of the file.
type Entry struct {
	SampleRate *Rate        `  KwSampleRate @@`
	Channels   []string     `| KwChannels @Ident+`
	Change     *ChangeEntry `| @@`
	End        *EndMark     `| @@`
}

// Rate is a samplerate value such as 1MHz, 2.5kHz or 1000000.
type Rate struct {
	Value string `@( Frequency | Real | Integer )`
}

// ChangeEntry sets all channel levels from sample At onwards.
// Example: @120 101
type ChangeEntry struct {
	At     string `At @Integer`
	Levels string `@Integer`
}

// EndMark gives the total sample count.
// Example: end 4000
type EndMark struct {
	At string `KwEnd @Integer`
}
