package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/scene"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/session"
)

// key names
const (
	keyScenes        = "scenes"
	keyAccounts      = "users"
	keyPortalIDs     = "portal_ids"
	keyMasterSession = "session:master"
	keyFlags         = "flags"
)

// key name prefixes
const (
	keyPrefixAccount      = "u"
	keyPrefixSubscription = "sub"
	keyPrefixSnapshot     = "j"
)

func accountKey(chatID int64) string {
	return fmt.Sprintf("%s:%d", keyPrefixAccount, chatID)
}

func subscriptionKey(c Category) string {
	return fmt.Sprintf("%s:%s", keyPrefixSubscription, c)
}

// GetScene gets the scene of a chat, None if the chat never started the bot
func (db *DB) GetScene(ctx context.Context, chatID int64) (scene.Scene, error) {
	value, err := db.rdb.HGet(ctx, keyScenes, strconv.FormatInt(chatID, 10)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return scene.None, nil
		}
		return scene.None, err
	}
	return scene.Scene(value), nil
}

// PutScene puts the scene of a chat
func (db *DB) PutScene(ctx context.Context, chatID int64, s scene.Scene) error {
	return db.rdb.HSet(ctx, keyScenes, strconv.FormatInt(chatID, 10), string(s)).Err()
}

// CountScenes counts the chats that started the bot
func (db *DB) CountScenes(ctx context.Context) (int64, error) {
	return db.rdb.HLen(ctx, keyScenes).Result()
}

// SceneChatIDs gets the IDs of all chats that started the bot
func (db *DB) SceneChatIDs(ctx context.Context) ([]int64, error) {
	fields, err := db.rdb.HKeys(ctx, keyScenes).Result()
	if err != nil {
		return nil, err
	}
	return parseIDs(fields)
}

// GetAccount gets the account linked to a chat
func (db *DB) GetAccount(ctx context.Context, chatID int64) (Account, error) {
	value, err := db.rdb.Get(ctx, accountKey(chatID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = ErrAccountNotFound
		}
		return Account{}, err
	}

	var a Account
	if err = json.Unmarshal([]byte(value), &a); err != nil {
		return Account{}, err
	}
	a.ChatID = chatID
	return a, nil
}

// PutAccount puts the given account, replacing the stored one
func (db *DB) PutAccount(ctx context.Context, a Account) error {
	value, err := json.Marshal(a)
	if err != nil {
		return err
	}
	_, err = db.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, accountKey(a.ChatID), value, 0)
		pipe.SAdd(ctx, keyAccounts, a.ChatID)
		pipe.HSet(ctx, keyPortalIDs, strconv.FormatInt(a.PortalID, 10), a.ChatID)
		return nil
	})
	return err
}

// Link links a chat to a new account, unless the portal profile is linked to another chat
func (db *DB) Link(ctx context.Context, a Account) error {
	field := strconv.FormatInt(a.PortalID, 10)
	claimed, err := db.rdb.HSetNX(ctx, keyPortalIDs, field, a.ChatID).Result()
	if err != nil {
		return err
	}
	if !claimed {
		owner, err := db.rdb.HGet(ctx, keyPortalIDs, field).Int64()
		if err != nil {
			return err
		}
		if owner != a.ChatID {
			return ErrAlreadyLinked
		}
	}

	if err = db.link(ctx, a); err != nil {
		if claimed {
			// release the profile, nothing is linked to it
			if derr := db.rdb.HDel(ctx, keyPortalIDs, field).Err(); derr != nil {
				return fmt.Errorf("db: error releasing portal ID %d: %v (after %w)", a.PortalID, derr, err)
			}
		}
		return err
	}
	return nil
}

// link stores the account of a chat whose portal ID is already claimed
func (db *DB) link(ctx context.Context, a Account) error {
	// a chat relinked to another profile frees the previous one
	old, err := db.GetAccount(ctx, a.ChatID)
	switch {
	case err == nil && old.PortalID != a.PortalID:
		if err = db.rdb.HDel(ctx, keyPortalIDs, strconv.FormatInt(old.PortalID, 10)).Err(); err != nil {
			return err
		}
	case err != nil && !errors.Is(err, ErrAccountNotFound):
		return err
	}
	return db.PutAccount(ctx, a)
}

// FindByPortalID gets the chat ID linked to a portal profile
func (db *DB) FindByPortalID(ctx context.Context, portalID int64) (int64, error) {
	chatID, err := db.rdb.HGet(ctx, keyPortalIDs, strconv.FormatInt(portalID, 10)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = ErrAccountNotFound
		}
		return 0, err
	}
	return chatID, nil
}

// Unlink deletes the account of a chat along with all its subscriptions,
// returning the deleted account
func (db *DB) Unlink(ctx context.Context, chatID int64) (Account, error) {
	a, err := db.GetAccount(ctx, chatID)
	if err != nil {
		return Account{}, err
	}
	_, err = db.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, accountKey(chatID))
		pipe.SRem(ctx, keyAccounts, chatID)
		pipe.HDel(ctx, keyPortalIDs, strconv.FormatInt(a.PortalID, 10))
		for _, c := range Categories {
			pipe.SRem(ctx, subscriptionKey(c), chatID)
		}
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

// Accounts gets every linked account
func (db *DB) Accounts(ctx context.Context) ([]Account, error) {
	members, err := db.rdb.SMembers(ctx, keyAccounts).Result()
	if err != nil {
		return nil, err
	}
	ids, err := parseIDs(members)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = accountKey(id)
	}
	values, err := db.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	accounts := make([]Account, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok { // deleted in between
			continue
		}
		var a Account
		if err = json.Unmarshal([]byte(s), &a); err != nil {
			return nil, fmt.Errorf("db: error decoding account %d: %w", ids[i], err)
		}
		a.ChatID = ids[i]
		accounts = append(accounts, a)
	}
	return accounts, nil
}

// GetSession gets the portal session token of an identity, empty if it has none
func (db *DB) GetSession(ctx context.Context, id int64) (string, error) {
	if id == session.Master {
		token, err := db.rdb.Get(ctx, keyMasterSession).Result()
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return token, err
	}

	a, err := db.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return "", nil
		}
		return "", err
	}
	return a.Session, nil
}

// PutSession puts the portal session token of an identity
func (db *DB) PutSession(ctx context.Context, id int64, token string) error {
	if id == session.Master {
		return db.rdb.Set(ctx, keyMasterSession, token, 0).Err()
	}

	a, err := db.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	a.Session = token
	return db.PutAccount(ctx, a)
}

// GetCredentials gets the portal ID and the credential secret of a chat
func (db *DB) GetCredentials(ctx context.Context, id int64) (int64, string, error) {
	a, err := db.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return 0, "", nil
		}
		return 0, "", err
	}
	return a.PortalID, a.Secret, nil
}

// GetFlag gets the day a daily notification was last sent
func (db *DB) GetFlag(ctx context.Context, category string) (string, error) {
	day, err := db.rdb.HGet(ctx, keyFlags, category).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return day, err
}

// PutFlag puts the day a daily notification was sent
func (db *DB) PutFlag(ctx context.Context, category, day string) error {
	return db.rdb.HSet(ctx, keyFlags, category, day).Err()
}

func parseIDs(values []string) ([]int64, error) {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
