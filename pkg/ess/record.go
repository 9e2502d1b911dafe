package ess

// readRecord decodes the shared record header. The header carries no size,
// so the per-type payload that follows can be neither decoded nor skipped
// safely; the read fails with KindUnsupported instead of guessing.
func readRecord(c *Cursor) (Record, error) {
	tag, err := c.readArray4()
	if err != nil {
		return Record{}, inField("type", err)
	}
	flags, err := c.ReadU32()
	if err != nil {
		return Record{}, inField("flags", err)
	}
	rec := Record{Type: RecordType(tag), Flags: RecordFlagsFromBits(flags)}
	return rec, readRecordPayload(c, rec)
}

func readRecordPayload(c *Cursor, rec Record) error {
	return &DecodeError{
		Kind:   KindUnsupported,
		Field:  "payload",
		Offset: c.Offset(),
		Err:    UnsupportedError{Feature: "record payload", Detail: "for " + rec.Type.String() + " records"},
	}
}
