// Package notification fans submission events out to external sinks such as
// chat services (via shoutrrr), HTTP webhooks and an MQTT broker.
//
// Delivery is asynchronous. A slow or failing sink never delays the agent's
// submission, and each sink sits behind its own circuit breaker.
package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/happycall-qa/happycall/internal/happycall"
	"github.com/happycall-qa/happycall/internal/logger"
)

// Delivery results reported to the ResultRecorder.
const (
	ResultSuccess     = "success"
	ResultFailure     = "failure"
	ResultCircuitOpen = "circuit_open"
	ResultDropped     = "dropped"
)

// Provider delivers a Message to a single sink.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg *Message) error
}

// ResultRecorder counts delivery attempts per sink.
type ResultRecorder interface {
	RecordNotification(sink, result string)
}

type noopRecorder struct{}

func (noopRecorder) RecordNotification(string, string) {}

// Message is the rendered form of a submission event.
type Message struct {
	Title string
	Body  string
	Event happycall.SubmissionEvent
}

// NewMessage renders ev into a short Korean title and body.
func NewMessage(ev happycall.SubmissionEvent) *Message {
	var b strings.Builder
	fmt.Fprintf(&b, "고객: %s\n", ev.CustomerName)
	fmt.Fprintf(&b, "상담원: %s\n", ev.AgentUsername)
	fmt.Fprintf(&b, "최종 판정: %s\n", ev.FinalStatus)
	if ev.HasRecording {
		b.WriteString("녹취: 있음\n")
	} else {
		b.WriteString("녹취: 없음\n")
	}
	if !ev.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "제출 시각: %s", ev.CreatedAt.Format(time.DateTime))
	}

	title := "[해피콜] 제출 완료"
	if ev.Abnormal() {
		title = "[해피콜] 비정상 응답 확인 필요"
	}
	return &Message{
		Title: fmt.Sprintf("%s - %s", title, ev.CustomerName),
		Body:  strings.TrimRight(b.String(), "\n"),
		Event: ev,
	}
}

// GetLogger returns a logger scoped to the notification module.
func GetLogger() logger.Logger {
	return logger.Global().Module("notification")
}
