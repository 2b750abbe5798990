package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"
)

func New(prefix string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), hex.EncodeToString(buf))
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// SaleNumber builds a human-readable sale number, SL-YYYYMMDD-xxxx with a
// 4-char base36 suffix. The suffix is random, so callers must check the
// result against existing sales and regenerate on collision.
func SaleNumber(at time.Time) string {
	var suffix strings.Builder
	for i := 0; i < 4; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(base36))))
		if err != nil {
			suffix.WriteByte(base36[time.Now().UnixNano()%int64(len(base36))])
			continue
		}
		suffix.WriteByte(base36[n.Int64()])
	}
	return fmt.Sprintf("SL-%s-%s", at.Format("20060102"), suffix.String())
}
