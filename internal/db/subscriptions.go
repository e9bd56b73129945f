package db

import (
	"context"
)

// Toggle flips the subscription of a chat to a category, returning whether it is now subscribed
func (db *DB) Toggle(ctx context.Context, c Category, chatID int64) (bool, error) {
	key := subscriptionKey(c)
	added, err := db.rdb.SAdd(ctx, key, chatID).Result()
	if err != nil {
		return false, err
	}
	if added == 1 {
		return true, nil
	}
	return false, db.rdb.SRem(ctx, key, chatID).Err()
}

// Subscriptions gets the subscription state of a chat for every category
func (db *DB) Subscriptions(ctx context.Context, chatID int64) (map[Category]bool, error) {
	subs := make(map[Category]bool, len(Categories))
	for _, c := range Categories {
		ok, err := db.rdb.SIsMember(ctx, subscriptionKey(c), chatID).Result()
		if err != nil {
			return nil, err
		}
		subs[c] = ok
	}
	return subs, nil
}

// Subscribers gets the IDs of the chats subscribed to a category
func (db *DB) Subscribers(ctx context.Context, c Category) ([]int64, error) {
	members, err := db.rdb.SMembers(ctx, subscriptionKey(c)).Result()
	if err != nil {
		return nil, err
	}
	return parseIDs(members)
}

// CountSubscribers counts the chats subscribed to each category
func (db *DB) CountSubscribers(ctx context.Context) (map[Category]int64, error) {
	counts := make(map[Category]int64, len(Categories))
	for _, c := range Categories {
		n, err := db.rdb.SCard(ctx, subscriptionKey(c)).Result()
		if err != nil {
			return nil, err
		}
		counts[c] = n
	}
	return counts, nil
}
