package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/lightfold/captura/core"
	"github.com/lightfold/captura/storage"
)

// SmartFolderRepository implements storage.SmartFolderRepository for BadgerDB.
type SmartFolderRepository struct {
	backend *Backend
}

var _ storage.SmartFolderRepository = (*SmartFolderRepository)(nil)

// NewSmartFolderRepository creates a new SmartFolderRepository.
func NewSmartFolderRepository(backend *Backend) (*SmartFolderRepository, error) {
	return &SmartFolderRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database handle.
func (r *SmartFolderRepository) Close() error {
	return nil
}

// AddSmartFolders adds one or more folders to storage.
func (r *SmartFolderRepository) AddSmartFolders(ctx context.Context, folders ...*core.SmartFolder) ([]*core.SmartFolder, error) {
	for _, folder := range folders {
		if err := core.ValidateSmartFolder(folder); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, folder := range folders {
			folder.InsertedAt = time.Now().UTC()
			folder.UpdatedAt = folder.InsertedAt

			key := makeFolderKey(folder.Id)
			if err := tx.Set(key, storage.MarshalSmartFolder(folder)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return folders, err
}

// GetSmartFolder retrieves a folder by ID.
func (r *SmartFolderRepository) GetSmartFolder(ctx context.Context, id core.ID) (*core.SmartFolder, error) {
	var result *core.SmartFolder
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeFolderKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			result, err = storage.UnmarshalSmartFolder(val)
			return err
		})
	}, false)
	return result, err
}

// GetSmartFolders retrieves all folders.
func (r *SmartFolderRepository) GetSmartFolders(ctx context.Context) ([]*core.SmartFolder, error) {
	var results []*core.SmartFolder
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(folderPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var folder *core.SmartFolder
			err := iter.Item().Value(func(val []byte) error {
				var err error
				folder, err = storage.UnmarshalSmartFolder(val)
				return err
			})
			if err != nil {
				return err
			}
			if folder != nil {
				results = append(results, folder)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteSmartFolders removes folders by their IDs.
func (r *SmartFolderRepository) DeleteSmartFolders(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeFolderKey(id)
			if _, err := tx.Get(key); err != nil {
				if err == badger.ErrKeyNotFound {
					return storage.ErrNotFound
				}
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}
