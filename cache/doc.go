// Package cache provides the bounded LRU map and input fingerprinting used by
// the compiled-validator and result caches. It is deliberately independent of
// the descriptor model so the engine can compose it freely.
package cache
