package queue

import "github.com/ThreeDotsLabs/watermill/message"

func publish[T any](pub message.Publisher, topic string, payload T, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(topic, msg)
}

// PublishAudioStored 发布 av.audio.stored 事件.
func PublishAudioStored(pub message.Publisher, payload AudioStoredPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicAudioStored, payload, opts...)
}

// PublishAudioDeleted 发布 av.audio.deleted 事件.
func PublishAudioDeleted(pub message.Publisher, payload AudioDeletedPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicAudioDeleted, payload, opts...)
}

// PublishAudioOrphan 发布 av.audio.orphan.detected 事件.
func PublishAudioOrphan(pub message.Publisher, payload AudioOrphanPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicAudioOrphanDetected, payload, opts...)
}

// ParseAudioStored 解析 av.audio.stored 消息.
func ParseAudioStored(msg *message.Message) (Message[AudioStoredPayload], error) {
	return ParseWatermillMessage[AudioStoredPayload](msg)
}

// ParseAudioDeleted 解析 av.audio.deleted 消息.
func ParseAudioDeleted(msg *message.Message) (Message[AudioDeletedPayload], error) {
	return ParseWatermillMessage[AudioDeletedPayload](msg)
}

// ParseAudioOrphan 解析 av.audio.orphan.detected 消息.
func ParseAudioOrphan(msg *message.Message) (Message[AudioOrphanPayload], error) {
	return ParseWatermillMessage[AudioOrphanPayload](msg)
}
