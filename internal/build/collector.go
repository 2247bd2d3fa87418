package build

// AppendChunk appends one streamed output chunk to buf. The streaming
// transport splits raw reads on newlines, so a chunk that ended with a
// newline carries an artificial trailing empty element; that single trailing
// element is dropped from the chunk before appending. Only the current chunk
// is inspected, never lines appended by earlier calls. An empty chunk is a
// no-op.
func AppendChunk(buf []string, chunk []string) []string {
	if len(chunk) == 0 {
		return buf
	}
	if chunk[len(chunk)-1] == "" {
		chunk = chunk[:len(chunk)-1]
	}
	return append(buf, chunk...)
}
