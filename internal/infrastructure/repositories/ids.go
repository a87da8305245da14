package repositories

import "github.com/google/uuid"

// newID hands out time-ordered v7 ids so inserts land at the end of the
// primary key index.
var newID = uuid.NewV7
