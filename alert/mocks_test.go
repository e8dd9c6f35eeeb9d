package alert

import "context"

type notifyDelegate func(context.Context, *Notification) (*Delivery, error)

type mockNotifier struct {
	notifyFn notifyDelegate
}

func (m *mockNotifier) Notify(ctx context.Context, n *Notification) (*Delivery, error) {
	if m.notifyFn != nil {
		return m.notifyFn(ctx, n)
	}

	return &Delivery{}, nil
}

// recordingNotifier returns a notifier that captures every notification
func recordingNotifier(sent *[]*Notification) *mockNotifier {
	return &mockNotifier{
		notifyFn: func(_ context.Context, n *Notification) (*Delivery, error) {
			*sent = append(*sent, n)

			return &Delivery{
				Number: len(*sent),
				URL:    "https://github.com/acme/fx/issues/1",
			}, nil
		},
	}
}
