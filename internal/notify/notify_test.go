package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/i474232898/pest-advisory/internal/risk"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.sent = append(s.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

type failing struct{}

func (failing) Notify(context.Context, risk.FarmerRecord, []risk.Alert) error {
	return errors.New("down")
}

var (
	farmer = risk.FarmerRecord{UID: "u1", District: "Dharwad", FCMToken: "tok"}
	alerts = []risk.Alert{
		{CropName: "cotton", TriggerPest: "whitefly", Severity: risk.SeverityHigh, RiskScore: 0.7, Timestamp: 1000},
		{CropName: "tomato", TriggerPest: "early_blight", Severity: risk.SeverityModerate, RiskScore: 0.5, Timestamp: 1000},
	}
)

func TestKafkaPublisher(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	if err := p.Notify(context.Background(), farmer, alerts); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(w.msgs) != 2 || string(w.msgs[0].Key) != "u1" {
		t.Fatalf("messages: %+v", w.msgs)
	}
	var ev AlertEvent
	if err := json.Unmarshal(w.msgs[1].Value, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.District != "Dharwad" || ev.FCMToken != "tok" || ev.Alert.CropName != "tomato" {
		t.Errorf("event: %+v", ev)
	}

	if err := p.Notify(context.Background(), farmer, nil); err != nil || len(w.msgs) != 2 {
		t.Errorf("empty scan should publish nothing")
	}
}

func TestTelegramSendsOnlyHighSeverity(t *testing.T) {
	s := &fakeSender{}
	n := &Telegram{bot: s, chatID: 42, logger: zap.NewNop()}

	if err := n.Notify(context.Background(), farmer, alerts); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(s.sent) != 1 || s.sent[0].ChatID != 42 {
		t.Fatalf("sent: %+v", s.sent)
	}
	want := "High pest risk in Dharwad (farmer u1)\n- cotton: whitefly, score 0.70"
	if s.sent[0].Text != want {
		t.Errorf("text:\n%q\nwant\n%q", s.sent[0].Text, want)
	}

	if err := n.Notify(context.Background(), farmer, alerts[1:]); err != nil || len(s.sent) != 1 {
		t.Errorf("moderate alerts should not be sent")
	}
}

func TestMultiJoinsErrors(t *testing.T) {
	w := &fakeWriter{}
	m := Multi{failing{}, &KafkaPublisher{writer: w}}

	if err := m.Notify(context.Background(), farmer, alerts); err == nil {
		t.Fatal("expected joined error")
	}
	if len(w.msgs) != 2 {
		t.Errorf("later notifiers must still run, got %d messages", len(w.msgs))
	}
}
