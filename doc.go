// Package rawrcache provides a namespaced in-memory cache. A Registry maps
// namespaces to independently configured regions; each region bounds its
// entry count with LRU, LFU or FIFO eviction and expires entries by
// time-to-live and time-to-idle.
//
// Hosts that speak an untyped get/put/remove contract use an Adapter, which
// binds one namespace of a Registry[any, any] to the Cache interface.
package rawrcache
