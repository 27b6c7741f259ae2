package document

// Line is one logical line of a text, without its terminator.
type Line struct {
	// Number is 1-based.
	Number int

	// Offset is the byte offset of the line start in the text.
	Offset int

	Text string
}

// SplitLines splits text into logical lines at every "\r\n", "\n" and "\r".
// The text after the last terminator is always a line, so a trailing
// terminator yields an empty last line and the empty text is one empty line.
func SplitLines(text string) []Line {
	var lines []Line
	start := 0

	for idx := 0; idx < len(text); idx++ {
		switch text[idx] {
		case '\n':
			lines = append(lines, Line{Number: len(lines) + 1, Offset: start, Text: text[start:idx]})
			start = idx + 1
		case '\r':
			lines = append(lines, Line{Number: len(lines) + 1, Offset: start, Text: text[start:idx]})
			if idx+1 < len(text) && text[idx+1] == '\n' {
				idx++
			}
			start = idx + 1
		}
	}

	lines = append(lines, Line{Number: len(lines) + 1, Offset: start, Text: text[start:]})

	return lines
}
