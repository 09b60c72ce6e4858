package orm

import "github.com/arllen133/blogcms/internal/orm/clause"

// JoinOn is one equality term of a JOIN ... ON clause.
type JoinOn struct {
	Left  clause.Column
	Right clause.Column
}

// On pairs a column of the main table with a column of the joined table.
// Unqualified columns are qualified with their respective table names.
func On(left, right interface{ Column() clause.Column }) JoinOn {
	return JoinOn{
		Left:  left.Column(),
		Right: right.Column(),
	}
}
