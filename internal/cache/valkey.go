package cache

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"tiketin/internal/models"

	"github.com/redis/go-redis/v9"
)

// availability snapshots are short-lived; they only smooth read bursts and
// feed the fail-open fallback, the database stays authoritative
const availabilityTTL = 5 * time.Second

type Config struct {
	Addr         string
	Password     string
	UsersHashKey string
	SessionTTL   time.Duration
}

type ValkeyClient struct {
	client       *redis.Client
	usersHashKey string
	sessionTTL   time.Duration
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	sessionTTL := cfg.SessionTTL
	if sessionTTL == 0 {
		sessionTTL = 30 * time.Minute
	}

	return &ValkeyClient{
		client:       rdb,
		usersHashKey: cfg.UsersHashKey,
		sessionTTL:   sessionTTL,
	}, nil
}

func (v *ValkeyClient) GetUserIDByAuth(ctx context.Context, email, passwordHash string) (int64, error) {
	authString := fmt.Sprintf("%s:%s", email, passwordHash)
	cacheKey := base64.StdEncoding.EncodeToString([]byte(authString))

	userIDStr, err := v.client.HGet(ctx, v.usersHashKey, cacheKey).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, fmt.Errorf("user not found in cache")
		}
		return 0, fmt.Errorf("cache lookup error: %w", err)
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID in cache: %w", err)
	}

	return userID, nil
}

func availabilityKey(ticketTypeID int64) string {
	return fmt.Sprintf("availability:%d", ticketTypeID)
}

func staticTotalKey(ticketTypeID int64) string {
	return fmt.Sprintf("availability:static:%d", ticketTypeID)
}

// GetAvailability returns a cached live availability snapshot.
func (v *ValkeyClient) GetAvailability(ctx context.Context, ticketTypeID int64) (*models.AvailabilityResponse, error) {
	raw, err := v.client.Get(ctx, availabilityKey(ticketTypeID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("availability not cached")
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}

	var resp models.AvailabilityResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("invalid cached availability: %w", err)
	}
	return &resp, nil
}

// SetAvailability stores a live snapshot with a short TTL and separately
// pins the static total without expiry so the fail-open fallback survives
// a database outage.
func (v *ValkeyClient) SetAvailability(ctx context.Context, resp *models.AvailabilityResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal availability: %w", err)
	}

	if err := v.client.Set(ctx, availabilityKey(resp.TicketTypeID), raw, availabilityTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache availability: %w", err)
	}
	return v.client.Set(ctx, staticTotalKey(resp.TicketTypeID), resp.TotalQuantity, 0).Err()
}

// GetStaticTotal returns the last known total quantity of a ticket type.
func (v *ValkeyClient) GetStaticTotal(ctx context.Context, ticketTypeID int64) (int, error) {
	total, err := v.client.Get(ctx, staticTotalKey(ticketTypeID)).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, fmt.Errorf("static total not cached")
		}
		return 0, fmt.Errorf("cache lookup error: %w", err)
	}
	return total, nil
}

// InvalidateAvailability drops the live snapshot after a purchase mutates stock.
func (v *ValkeyClient) InvalidateAvailability(ctx context.Context, ticketTypeID int64) error {
	return v.client.Del(ctx, availabilityKey(ticketTypeID)).Err()
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("session:selection:%d", userID)
}

// SaveSelectionSession persists a user's in-progress selection with the
// configured TTL, replacing whatever was stored before.
func (v *ValkeyClient) SaveSelectionSession(ctx context.Context, userID int64, session *models.SelectionSession) error {
	session.UpdatedAt = time.Now()
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return v.client.Set(ctx, sessionKey(userID), raw, v.sessionTTL).Err()
}

// GetSelectionSession returns the user's saved selection, or nil if none
// exists or it has expired.
func (v *ValkeyClient) GetSelectionSession(ctx context.Context, userID int64) (*models.SelectionSession, error) {
	raw, err := v.client.Get(ctx, sessionKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}

	var session models.SelectionSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("invalid cached session: %w", err)
	}
	return &session, nil
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
