// Package relaycache holds the cache entry format used by the relay
// client and ready-made Cache implementations.
package relaycache

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

const newLineByte byte = '\n'

// CacheSegmentsFromBytes deserializes a cache entry written by CacheSegmentsToBytes.
func CacheSegmentsFromBytes(cacheBytes []byte) (fetchTime time.Time, eTag string, body []byte, err error) {
	fetchTimeIndex := bytes.IndexByte(cacheBytes, newLineByte)
	if fetchTimeIndex == -1 {
		return time.Time{}, "", nil, fmt.Errorf("number of values is fewer than expected")
	}
	eTagIndex := bytes.IndexByte(cacheBytes[fetchTimeIndex+1:], newLineByte)
	if eTagIndex == -1 {
		return time.Time{}, "", nil, fmt.Errorf("number of values is fewer than expected")
	}

	fetchTimeBytes := cacheBytes[:fetchTimeIndex]
	fetchTimeMs, err := strconv.ParseInt(string(fetchTimeBytes), 10, 64)
	if err != nil {
		return time.Time{}, "", nil, fmt.Errorf("invalid fetch time: %s. %v", fetchTimeBytes, err)
	}

	// The ETag may be empty: not every backend sends one.
	eTagBytes := cacheBytes[fetchTimeIndex+1 : fetchTimeIndex+eTagIndex+1]

	bodyBytes := cacheBytes[eTagIndex+1+fetchTimeIndex+1:]
	if len(bodyBytes) == 0 {
		return time.Time{}, "", nil, fmt.Errorf("empty runtime data JSON")
	}

	return time.UnixMilli(fetchTimeMs), string(eTagBytes), bodyBytes, nil
}

// CacheSegmentsToBytes serializes the input parameters to the cache entry format.
func CacheSegmentsToBytes(fetchTime time.Time, eTag string, body []byte) []byte {
	toCache := []byte(strconv.FormatInt(fetchTime.UnixMilli(), 10))
	toCache = append(toCache, newLineByte)
	toCache = append(toCache, eTag...)
	toCache = append(toCache, newLineByte)
	toCache = append(toCache, body...)
	return toCache
}

const CacheVersion = "v1"
const RuntimeDataName = "runtime_data.json"

// ProduceCacheKey constructs a cache key identifying the document at url.
func ProduceCacheKey(url string, documentName string, cacheVersion string) string {
	h := sha1.New()
	h.Write([]byte(url + "_" + documentName + "_" + cacheVersion))
	return hex.EncodeToString(h.Sum(nil))
}
