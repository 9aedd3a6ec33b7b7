package sqlxrepos

import (
	"strconv"

	"github.com/lib/pq"
)

func dollar(n int) string { return "$" + strconv.Itoa(n) }

func pqStringArray(ss []string) pq.StringArray { return pq.StringArray(ss) }
