package cache

import "time"

// Cache defines the interface for cache backends. The memory backend hands
// stored values back unchanged; the Redis backend returns json.RawMessage,
// so callers that need typed values must handle both shapes on Get.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	SetWithTTL(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	Clear()
}
