package notifier

import "IdleTycoon/internal/model"

// Publisher receives the presentation feed: a full state snapshot after every
// change plus discrete reward notices.
type Publisher interface {
	PublishState(st model.State)
	PublishReward(r model.RewardNotice)
}

// Noop discards everything.
type Noop struct{}

func (Noop) PublishState(model.State)         {}
func (Noop) PublishReward(model.RewardNotice) {}

// Multi fans out to several publishers in order.
type Multi []Publisher

func (m Multi) PublishState(st model.State) {
	for _, p := range m {
		p.PublishState(st)
	}
}

func (m Multi) PublishReward(r model.RewardNotice) {
	for _, p := range m {
		p.PublishReward(r)
	}
}
