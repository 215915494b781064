package redis

import "fmt"

const keyPrefix = "bilancio"

// keyLedger is the hash holding one user's transactions, field = id.
func keyLedger(userID string) string {
	return fmt.Sprintf("%s:user:%s:tx", keyPrefix, userID)
}
