package sharding

// ShardRouter picks which Redis shard owns a user's cart. A single-node
// deployment is just ShardCount=1.
type ShardRouter struct {
	ShardCount int
}

func NewShardRouter(shardCount int) *ShardRouter {
	if shardCount < 1 {
		shardCount = 1
	}
	return &ShardRouter{ShardCount: shardCount}
}

// GetShard maps a user id onto a shard index. Carts are keyed per user, so
// every operation for one user lands on the same shard.
func (r *ShardRouter) GetShard(userID int) int {
	if userID < 0 {
		userID = -userID
	}
	return userID % r.ShardCount
}
