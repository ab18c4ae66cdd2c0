package embedded

import (
	"encoding/json"

	"github.com/dgraph-io/badger/v4"
)

// scanJSON walks the values under prefix, newest key first when reverse is set.
// visit returns false to stop early.
func scanJSON(txn *badger.Txn, prefix string, reverse bool, visit func(val []byte) (bool, error)) error {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = reverse
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	seek := []byte(prefix)
	if reverse {
		// reverse iteration seeks to the greatest key <= seek
		seek = append(seek, 0xFF)
	}
	for it.Seek(seek); it.ValidForPrefix([]byte(prefix)); it.Next() {
		var keepGoing bool
		err := it.Item().Value(func(val []byte) error {
			var err error
			keepGoing, err = visit(val)
			return err
		})
		if err != nil {
			return err
		}
		if !keepGoing {
			return nil
		}
	}
	return nil
}

// scanKeys walks the key suffixes under prefix without loading values.
func scanKeys(txn *badger.Txn, prefix string, visit func(suffix string) error) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
		if err := visit(string(it.Item().Key()[len(prefix):])); err != nil {
			return err
		}
	}
	return nil
}

func unmarshal(val []byte, dst any) error {
	return json.Unmarshal(val, dst)
}
