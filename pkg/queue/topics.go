package queue

// 主题命名：av.<域>.<动作>[.<状态>].

const (
	// TopicAudioStored 文件字节与元数据都已写入.
	TopicAudioStored = "av.audio.stored"
	// TopicAudioDeleted 文件字节与元数据都已删除.
	TopicAudioDeleted = "av.audio.deleted"
	// TopicAudioOrphanDetected 对账发现孤儿文件或孤儿记录.
	TopicAudioOrphanDetected = "av.audio.orphan.detected"
)

// AllTopics 返回全部业务主题，CLI 用于展示.
func AllTopics() []string {
	return []string{TopicAudioStored, TopicAudioDeleted, TopicAudioOrphanDetected}
}
