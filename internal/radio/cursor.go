package radio

// cursor is a station's playback position: the playlist index of the loaded
// track and how many bytes of its buffer have already been broadcast.
// Only the broadcast clock (and the rotations it triggers) mutates a cursor,
// so 0 <= offset <= len(buffer) holds at every tick boundary.
type cursor struct {
	track  int
	offset int
}

// sliceBounds returns the half-open byte range the next tick should emit from
// a buffer of bufLen bytes, and whether that slice exhausts the buffer. The
// final slice of a track may be shorter than sliceSize.
func (c cursor) sliceBounds(bufLen, sliceSize int) (start, end int, last bool) {
	start = c.offset
	end = start + sliceSize
	if end >= bufLen {
		return start, bufLen, true
	}
	return start, end, false
}

// advance moves the offset to end. Callers pass an end obtained from
// sliceBounds against the currently loaded buffer.
func (c *cursor) advance(end int) {
	c.offset = end
}

// nextTrack wraps the index to the following playlist entry and resets the
// offset for a fresh buffer.
func (c *cursor) nextTrack(playlistLen int) {
	c.track = (c.track + 1) % playlistLen
	c.offset = 0
}
