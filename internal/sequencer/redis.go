package sequencer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cimillas/ultimate-ticket/services/eticket/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey holds the last issued ticket number.
const DefaultRedisKey = "eticket:ticket_number"

// Redis issues numbers from a counter shared by every replica using INCR.
type Redis struct {
	client redis.Cmdable
	key    string
}

func NewRedis(client redis.Cmdable, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key}
}

func (r *Redis) Next(ctx context.Context) (domain.TicketNumber, error) {
	v, err := r.client.Incr(ctx, r.key).Result()
	if err != nil {
		// INCR refuses to go past int64 max instead of wrapping.
		if strings.Contains(err.Error(), "overflow") {
			return 0, domain.ErrSequencerOverflow
		}
		return 0, fmt.Errorf("incr %s: %w", r.key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("incr %s returned %d: %w", r.key, v, domain.ErrSequencerOverflow)
	}
	return domain.TicketNumber(v), nil
}

// raiseScript moves the counter up to ARGV[1] and never down. Both values are
// canonical decimal integers, compared as strings so no digit is lost to Lua
// doubles.
var raiseScript = redis.NewScript(`
local current = redis.call("GET", KEYS[1]) or "0"
local floor = ARGV[1]
if #current < #floor or (#current == #floor and current < floor) then
	redis.call("SET", KEYS[1], floor)
	return floor
end
return current
`)

// ResumeFrom makes sure the next number is above last, so tickets already
// recorded elsewhere are never issued again. It returns the counter value.
func (r *Redis) ResumeFrom(ctx context.Context, last domain.TicketNumber) (domain.TicketNumber, error) {
	if last > domain.MaxTicketNumber {
		return 0, fmt.Errorf("resume %s from %d: %w", r.key, last, domain.ErrSequencerOverflow)
	}
	raw, err := raiseScript.Run(ctx, r.client, []string{r.key}, strconv.FormatUint(uint64(last), 10)).Text()
	if err != nil {
		return 0, fmt.Errorf("resume %s from %d: %w", r.key, last, err)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("resume %s: counter holds %q", r.key, raw)
	}
	return domain.TicketNumber(v), nil
}
