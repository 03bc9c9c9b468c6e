package redis

import "fmt"

// Key prefix for all roster data
const keyPrefix = "cityrunners"

// playerKey returns the Redis key for a roster entry
func playerKey(username string) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, username)
}

// playersIndexKey returns the Redis key for the SET of all usernames
func playersIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}
