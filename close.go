package vecdb

// Close releases all collections. Subsequent operations fail with
// ErrClosed; ListCollections returns an empty list. Close is idempotent.
func (db *Database) Close() error {
	if db == nil {
		return nil
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	db.closed = true
	clear(db.collections)

	return nil
}
