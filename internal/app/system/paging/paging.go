// internal/app/system/paging/paging.go

// Package paging implements keyset pagination for list endpoints. Pages are
// addressed by opaque cursors rather than offsets, so a page stays stable
// while rows are inserted ahead of it.
package paging

import (
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is the number of rows per page.
const PageSize = 50

// LimitPlusOne is the fetch limit for look-ahead pagination: one extra row
// to detect whether another page exists.
func LimitPlusOne() int64 { return int64(PageSize + 1) }

// Result reports whether neighboring pages exist after TrimPage.
type Result struct {
	HasPrev bool
	HasNext bool
}

// TrimPage trims a look-ahead fetch of PageSize+1 rows down to the page, in
// place, and reports the neighbors. Going backwards (before != "") the extra
// row is the front one and a next page always exists; going forwards the
// extra row is the back one and a previous page exists iff we came from a
// cursor.
func TrimPage[T any](rows *[]T, before, after string) Result {
	var res Result
	if before != "" {
		if len(*rows) > PageSize {
			*rows = (*rows)[1:]
			res.HasPrev = true
		}
		res.HasNext = true
		return res
	}
	if len(*rows) > PageSize {
		*rows = (*rows)[:PageSize]
		res.HasNext = true
	}
	res.HasPrev = after != ""
	return res
}

// Direction is the traversal direction of a page fetch.
type Direction int

const (
	Forward  Direction = iota // ascending sort, cursor lower-bounds the page
	Backward                  // descending sort, cursor upper-bounds the page
)

// KeysetConfig is a decoded page request: which way to walk and from where.
type KeysetConfig struct {
	Direction Direction
	SortOrder int // 1 ascending, -1 descending
	Cursor    *wafflemongo.Cursor
}

// ConfigureKeyset decodes the before/after cursors into a KeysetConfig.
// A bad cursor is treated as absent, which lands the caller on page one.
func ConfigureKeyset(before, after string) KeysetConfig {
	cfg := KeysetConfig{Direction: Forward, SortOrder: 1}
	if before != "" {
		cfg.Direction = Backward
		cfg.SortOrder = -1
		if c, ok := wafflemongo.DecodeCursor(before); ok {
			cfg.Cursor = &c
		}
	} else if after != "" {
		if c, ok := wafflemongo.DecodeCursor(after); ok {
			cfg.Cursor = &c
		}
	}
	return cfg
}

// ApplyToFind sets the sort and look-ahead limit on find options. The _id
// tiebreaker keeps the order total when sort keys collide.
func (cfg KeysetConfig) ApplyToFind(find *options.FindOptions, sortField string) {
	find.SetSort(bson.D{
		{Key: sortField, Value: cfg.SortOrder},
		{Key: "_id", Value: cfg.SortOrder},
	}).SetLimit(LimitPlusOne())
}

// KeysetWindow returns the filter clause selecting rows past the cursor, or
// nil when there is no cursor.
func (cfg KeysetConfig) KeysetWindow(sortField string) bson.M {
	if cfg.Cursor == nil {
		return nil
	}
	dir := "gt"
	if cfg.Direction == Backward {
		dir = "lt"
	}
	return wafflemongo.KeysetWindow(sortField, dir, cfg.Cursor.CI, cfg.Cursor.ID)
}

// Reverse restores display order after a backward fetch, which arrives
// descending.
func Reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// BuildCursors derives the prev/next cursors from the first and last rows of
// the trimmed page.
func BuildCursors[T any](rows []T, keyFn func(T) string, idFn func(T) primitive.ObjectID) (prev, next string) {
	if len(rows) == 0 {
		return "", ""
	}
	first, last := rows[0], rows[len(rows)-1]
	return wafflemongo.EncodeCursor(keyFn(first), idFn(first)),
		wafflemongo.EncodeCursor(keyFn(last), idFn(last))
}
