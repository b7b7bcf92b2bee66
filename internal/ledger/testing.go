package ledger

// SeedRecord is a test helper that stores raw record bytes when using the in-memory ledger.
// It bypasses every token rule, which lets tests plant malformed or foreign records.
func SeedRecord(l Ledger, key PublicKey, data []byte) {
	if mem, ok := l.(*inMemoryLedger); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.records[key] = cloneBytes(data)
	}
}
