package queue

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const analysisJobsKey = "analysis_jobs"

type Queue struct {
	client *redis.Client
}

func New(url string) (*Queue, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	return &Queue{client: client}, nil
}

func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

func (q *Queue) PushAnalysisJob(ctx context.Context, messageID string) error {
	return q.client.LPush(ctx, analysisJobsKey, messageID).Err()
}

func (q *Queue) PopAnalysisJob(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := q.client.BRPop(ctx, timeout, analysisJobsKey).Result()
	if err != nil {
		return "", err
	}
	if len(res) < 2 {
		return "", redis.Nil
	}
	return res[1], nil
}

func (q *Queue) Depth(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, analysisJobsKey).Result()
}

func (q *Queue) Close() error {
	return q.client.Close()
}
