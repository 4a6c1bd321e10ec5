// Package broker fans events out from one producer to any number of
// subscribers, keyed by topic. The play screen uses it to push session clock
// updates to every open SSE stream for a session.
package broker

import "context"

// subscriberBuffer bounds how far a slow subscriber may lag. Events beyond it
// are dropped for that subscriber; SSE clients re-sync from the next event.
const subscriberBuffer = 16

type publication[TID comparable, TPayload any] struct {
	id      TID
	payload TPayload
}

type subscription[TID comparable, TPayload any] struct {
	id      TID
	channel chan TPayload
}

// Broker routes payloads from producers to topic subscribers. It is backed by
// a single goroutine started with Start, so no locks are needed. It does not
// handle panics, so Start should be wrapped in a recover.
type Broker[TID comparable, TPayload any] struct {
	stopChannel        chan struct{}
	publishChannel     chan publication[TID, TPayload]
	subscribeChannel   chan subscription[TID, TPayload]
	unsubscribeChannel chan subscription[TID, TPayload]
	closeTopicChannel  chan TID
}

// New creates a Broker. Call Start in a goroutine and Stop on shutdown.
func New[TID comparable, TPayload any]() *Broker[TID, TPayload] {
	return &Broker[TID, TPayload]{
		stopChannel:        make(chan struct{}),
		publishChannel:     make(chan publication[TID, TPayload]),
		subscribeChannel:   make(chan subscription[TID, TPayload]),
		unsubscribeChannel: make(chan subscription[TID, TPayload]),
		closeTopicChannel:  make(chan TID),
	}
}

// Start listening for publish, subscribe and close events. Blocks until Stop
// is called.
func (b *Broker[TID, TPayload]) Start() {
	subscribers := map[TID]map[chan TPayload]struct{}{}
	for {
		select {
		case <-b.stopChannel:
			for _, topic := range subscribers {
				for channel := range topic {
					close(channel)
				}
			}
			return

		case sub := <-b.subscribeChannel:
			topic := subscribers[sub.id]
			if topic == nil {
				topic = map[chan TPayload]struct{}{}
				subscribers[sub.id] = topic
			}
			topic[sub.channel] = struct{}{}

		case sub := <-b.unsubscribeChannel:
			topic := subscribers[sub.id]
			if _, ok := topic[sub.channel]; !ok {
				break
			}
			delete(topic, sub.channel)
			close(sub.channel)
			if len(topic) == 0 {
				delete(subscribers, sub.id)
			}

		case pub := <-b.publishChannel:
			for channel := range subscribers[pub.id] {
				select {
				case channel <- pub.payload:
				default:
					// Subscriber is not keeping up, drop the event.
				}
			}

		case id := <-b.closeTopicChannel:
			for channel := range subscribers[id] {
				close(channel)
			}
			delete(subscribers, id)
		}
	}
}

// Stop shuts the broker down and closes all subscriber channels.
func (b *Broker[TID, TPayload]) Stop() {
	close(b.stopChannel)
}

// Publish sends payload to every subscriber of the topic. Subscribers that
// cannot receive immediately miss the event.
func (b *Broker[TID, TPayload]) Publish(id TID, payload TPayload) {
	select {
	case b.publishChannel <- publication[TID, TPayload]{id: id, payload: payload}:
	case <-b.stopChannel:
	}
}

// Subscribe to a topic. The returned channel closes when ctx is done, the
// topic is closed, or the broker stops.
func (b *Broker[TID, TPayload]) Subscribe(ctx context.Context, id TID) <-chan TPayload {
	channel := make(chan TPayload, subscriberBuffer)
	sub := subscription[TID, TPayload]{id: id, channel: channel}
	select {
	case b.subscribeChannel <- sub:
	case <-b.stopChannel:
		close(channel)
		return channel
	}
	go func() {
		select {
		case <-ctx.Done():
			select {
			case b.unsubscribeChannel <- sub:
			case <-b.stopChannel:
			}
		case <-b.stopChannel:
		}
	}()
	return channel
}

// CloseTopic closes every subscriber channel of the topic, signalling that the
// producer is finished.
func (b *Broker[TID, TPayload]) CloseTopic(id TID) {
	select {
	case b.closeTopicChannel <- id:
	case <-b.stopChannel:
	}
}
