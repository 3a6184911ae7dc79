package database

import "context"

type Store interface {
	SaveGeoblockCheck(ctx context.Context, entry *GeoblockCheckEntry) error
}
