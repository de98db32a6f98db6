package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-sync/internal/model"
)

// HTTPClient ходит в бэкенд синхронизации: REST для записей, websocket для
// снапшотов
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

func NewHTTPClient(baseURL, token string, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{},
		logger:  logger,
	}
}

func (c *HTTPClient) Put(ctx context.Context, id string, rec model.TaskRecord) error {
	return c.do(ctx, http.MethodPut, "/api/tasks/"+id, rec)
}

func (c *HTTPClient) Merge(ctx context.Context, id string, fields map[string]any) error {
	return c.do(ctx, http.MethodPatch, "/api/tasks/"+id, fields)
}

func (c *HTTPClient) Remove(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrorUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrorPermission
	default:
		return fmt.Errorf("%w: status %d", ErrorUnavailable, resp.StatusCode)
	}
}

// Subscribe открывает websocket и транслирует входящие снапшоты в канал.
// Возвращенная функция отписки идемпотентна; после ее возврата новых событий
// не будет.
func (c *HTTPClient) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/ws/tasks"

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, nil, ErrorPermission
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrorUnavailable, err)
	}

	events := make(chan Event)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			conn.Close()
		})
	}

	go func() {
		defer close(events)
		for {
			var tasks map[string]model.TaskRecord
			if err := conn.ReadJSON(&tasks); err != nil {
				select {
				case <-done: // отписались, ошибка чтения ожидаема
				case <-ctx.Done():
				default:
					c.logger.Warn("subscription closed", zap.Error(err))
					select {
					case events <- Event{Err: fmt.Errorf("%w: %v", ErrorUnavailable, err)}:
					case <-done:
					}
				}
				return
			}

			select {
			case events <- Event{Tasks: tasks}:
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, cancel, nil
}
