package automation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/BradenHooton/tiktok-automation/internal/config"
	"github.com/BradenHooton/tiktok-automation/internal/models"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Operation names understood by the automation worker
const (
	OpAddAccount    = "add_account"
	OpRemoveAccount = "remove_account"
	OpAddPost       = "add_post"
	OpRemovePost    = "remove_post"
	OpAddProxy      = "add_proxy"
	OpRemoveProxy   = "remove_proxy"
	OpLikeVideo     = "like_video"
	OpCommentVideo  = "comment_video"
	OpShareVideo    = "share_video"
	OpSaveVideo     = "save_video"
	OpFollowUser    = "follow_user"
)

const defaultCallTimeout = 30 * time.Second

var errClientClosed = errors.New("rpc client closed")

// command is the request body published to the worker queue
type command struct {
	Op   string         `json:"op"`
	Args map[string]any `json:"args"`
}

// reply is the worker's response, matched by correlation id
type reply struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RPCClient talks to the automation worker over RabbitMQ using
// request/reply with a private reply queue.
type RPCClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	pub     publisher

	queue      string
	replyQueue string
	timeout    time.Duration
	logger     *slog.Logger

	mu      sync.Mutex
	pending map[string]chan reply
	closed  bool
}

var _ Subsystem = (*RPCClient)(nil)

// DialRPC connects to RabbitMQ, declares the command queue and a private
// reply queue and starts consuming replies.
func DialRPC(cfg config.AutomationConfig, logger *slog.Logger) (*RPCClient, error) {
	if strings.TrimSpace(cfg.AMQPURL) == "" {
		return nil, errors.New("automation amqp url is required")
	}
	if strings.TrimSpace(cfg.Queue) == "" {
		return nil, errors.New("automation queue is required")
	}

	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	replyQueue, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare reply queue: %w", err)
	}

	deliveries, err := ch.Consume(replyQueue.Name, "", true, true, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to consume replies: %w", err)
	}

	c := newRPCClient(ch, cfg.Queue, replyQueue.Name, cfg.CallTimeout, logger)
	c.conn = conn
	c.channel = ch

	go c.consume(deliveries)

	logger.Info("automation subsystem connected",
		slog.String("queue", cfg.Queue),
		slog.String("reply_queue", replyQueue.Name),
	)

	return c, nil
}

func newRPCClient(pub publisher, queue, replyQueue string, timeout time.Duration, logger *slog.Logger) *RPCClient {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &RPCClient{
		pub:        pub,
		queue:      queue,
		replyQueue: replyQueue,
		timeout:    timeout,
		logger:     logger,
		pending:    make(map[string]chan reply),
	}
}

func (c *RPCClient) consume(deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		c.dispatch(d.CorrelationId, d.Body)
	}
	c.failPending()
}

// dispatch hands a reply body to the caller waiting on correlationID
func (c *RPCClient) dispatch(correlationID string, body []byte) {
	c.mu.Lock()
	waiter, ok := c.pending[correlationID]
	if ok {
		delete(c.pending, correlationID)
	}
	c.mu.Unlock()

	if !ok {
		c.logger.Warn("dropping automation reply with unknown correlation id",
			slog.String("correlation_id", correlationID))
		return
	}

	var r reply
	if err := json.Unmarshal(body, &r); err != nil {
		r = reply{Error: fmt.Sprintf("malformed reply: %v", err)}
	}
	waiter <- r
}

// failPending releases every waiter once the reply stream ends
func (c *RPCClient) failPending() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	for id, waiter := range c.pending {
		waiter <- reply{Error: errClientClosed.Error()}
		delete(c.pending, id)
	}
}

func (c *RPCClient) call(ctx context.Context, op string, args map[string]any) (bool, error) {
	body, err := json.Marshal(command{Op: op, Args: args})
	if err != nil {
		return false, fmt.Errorf("%w: encode %s: %v", models.ErrSubsystemFailure, op, err)
	}

	correlationID := uuid.New().String()
	waiter := make(chan reply, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, fmt.Errorf("%w: %s: %v", models.ErrSubsystemFailure, op, errClientClosed)
	}
	c.pending[correlationID] = waiter
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, correlationID)
		c.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err = c.pub.PublishWithContext(ctx, "", c.queue, false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: correlationID,
		ReplyTo:       c.replyQueue,
		Timestamp:     time.Now(),
		Body:          body,
	})
	if err != nil {
		return false, fmt.Errorf("%w: publish %s: %v", models.ErrSubsystemFailure, op, err)
	}

	select {
	case r := <-waiter:
		if r.Error != "" {
			return false, fmt.Errorf("%w: %s: %s", models.ErrSubsystemFailure, op, r.Error)
		}
		return r.Success, nil
	case <-ctx.Done():
		return false, fmt.Errorf("%w: %s: %v", models.ErrSubsystemFailure, op, ctx.Err())
	}
}

// exec runs a management op; a false result is a failure
func (c *RPCClient) exec(ctx context.Context, op string, args map[string]any) error {
	ok, err := c.call(ctx, op, args)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s rejected", models.ErrSubsystemFailure, op)
	}
	return nil
}

func (c *RPCClient) engage(ctx context.Context, op string, args map[string]any) (Outcome, error) {
	ok, err := c.call(ctx, op, args)
	if err != nil {
		return OutcomeFailed, err
	}
	return OutcomeOf(ok), nil
}

func (c *RPCClient) AddAccount(ctx context.Context, handle, password, country string, proxy *string) error {
	return c.exec(ctx, OpAddAccount, map[string]any{
		"username": handle,
		"password": password,
		"country":  country,
		"proxy":    proxy,
	})
}

func (c *RPCClient) RemoveAccount(ctx context.Context, handle string) error {
	return c.exec(ctx, OpRemoveAccount, map[string]any{"username": handle})
}

func (c *RPCClient) AddPost(ctx context.Context, handle, filePath, caption string, when time.Time, tags *string) error {
	return c.exec(ctx, OpAddPost, map[string]any{
		"username":      handle,
		"video_path":    filePath,
		"caption":       caption,
		"schedule_time": when.Format(time.RFC3339),
		"tags":          tags,
	})
}

func (c *RPCClient) RemovePost(ctx context.Context, id string) error {
	return c.exec(ctx, OpRemovePost, map[string]any{"post_id": id})
}

func (c *RPCClient) AddProxy(ctx context.Context, address, country string) error {
	return c.exec(ctx, OpAddProxy, map[string]any{"address": address, "country": country})
}

func (c *RPCClient) RemoveProxy(ctx context.Context, address string) error {
	return c.exec(ctx, OpRemoveProxy, map[string]any{"address": address})
}

func (c *RPCClient) LikeVideo(ctx context.Context, handle, url string) (Outcome, error) {
	return c.engage(ctx, OpLikeVideo, map[string]any{"username": handle, "video_url": url})
}

func (c *RPCClient) CommentVideo(ctx context.Context, handle, url, text string) (Outcome, error) {
	return c.engage(ctx, OpCommentVideo, map[string]any{"username": handle, "video_url": url, "comment": text})
}

func (c *RPCClient) ShareVideo(ctx context.Context, handle, url, mode string) (Outcome, error) {
	return c.engage(ctx, OpShareVideo, map[string]any{"username": handle, "video_url": url, "share_type": mode})
}

func (c *RPCClient) SaveVideo(ctx context.Context, handle, url string) (Outcome, error) {
	return c.engage(ctx, OpSaveVideo, map[string]any{"username": handle, "video_url": url})
}

func (c *RPCClient) FollowUser(ctx context.Context, handle, target string) (Outcome, error) {
	return c.engage(ctx, OpFollowUser, map[string]any{"username": handle, "target_username": target})
}

// Close closes the underlying channel and connection.
func (c *RPCClient) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
