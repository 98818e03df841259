package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"mcq-quiz-service/internal/app"
	"mcq-quiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const questionListKey = "quiz:questions"

// QuestionCache is a read-through cache over an app.QuestionRepository.
// Participants hit List on every fetch and submission, so the full ordered
// question list is cached as a JSON blob with TTL. Admin writes pass through
// to the underlying store and drop the cached key.
type QuestionCache struct {
	client *redis.Client
	store  app.QuestionRepository
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionCache(client *redis.Client, store app.QuestionRepository, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		store:  store,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) List(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := c.cachedList(ctx); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(questionListKey, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if questions, ok := c.cachedList(ctx); ok {
			return questions, nil
		}

		questions, err := c.store.List(ctx)
		if err != nil {
			return nil, err
		}

		if raw, err := json.Marshal(questions); err == nil {
			// Cache fill is best-effort; a miss next time just re-reads the store.
			_ = c.client.Set(ctx, questionListKey, raw, c.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) Get(ctx context.Context, id string) (domain.Question, error) {
	return c.store.Get(ctx, id)
}

func (c *QuestionCache) Create(ctx context.Context, question domain.Question) (domain.Question, error) {
	created, err := c.store.Create(ctx, question)
	if err != nil {
		return domain.Question{}, err
	}
	c.invalidate(ctx)
	return created, nil
}

func (c *QuestionCache) Update(ctx context.Context, id string, question domain.Question) (domain.Question, error) {
	updated, err := c.store.Update(ctx, id, question)
	if err != nil {
		return domain.Question{}, err
	}
	c.invalidate(ctx)
	return updated, nil
}

func (c *QuestionCache) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *QuestionCache) cachedList(ctx context.Context) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, questionListKey).Bytes()
	if err != nil {
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

func (c *QuestionCache) invalidate(ctx context.Context) {
	_ = c.client.Del(ctx, questionListKey).Err()
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
