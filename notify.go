package main

import (
	"errors"

	"github.com/xconstruct/go-pushbullet"
)

// Notifier announces the start and end of long sweeps.
type Notifier interface {
	Notify(title, body string) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(title, body string) error { return nil }

// pushbulletNotifier pushes notes to the first device of the account.
type pushbulletNotifier struct {
	client *pushbullet.Client
	iden   string
}

func NewPushbulletNotifier(token string) (Notifier, error) {
	pb := pushbullet.New(token)
	devs, err := pb.Devices()
	if err != nil {
		return nil, err
	}
	if len(devs) == 0 {
		return nil, errors.New("pushbullet: no devices registered")
	}
	return &pushbulletNotifier{client: pb, iden: devs[0].Iden}, nil
}

func (n *pushbulletNotifier) Notify(title, body string) error {
	return n.client.PushNote(n.iden, title, body)
}
