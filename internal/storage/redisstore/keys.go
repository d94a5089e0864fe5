package redisstore

import "fmt"

const (
	deliveryKeyPrefix   = "folio:webhook:delivery:" // folio:webhook:delivery:{source}:{id}
	finalizePendingKey  = "folio:claims:finalize:pending"
	InvalidationChannel = "folio:invalidate"
)

func deliveryKey(source, id string) string {
	return fmt.Sprintf("%s%s:%s", deliveryKeyPrefix, source, id)
}
