package queue

import "github.com/redis/go-redis/v9"

// KEYS: wait, active. ARGV: lock key prefix, lock token, lease ms.
// Moves the oldest waiting id to active and takes its lease in one step so
// the stalled-job check never sees an active id without a lock.
var reserveScript = redis.NewScript(`
local id = redis.call('LMOVE', KEYS[1], KEYS[2], 'RIGHT', 'LEFT')
if not id then
  return false
end
redis.call('SET', ARGV[1] .. id, ARGV[2], 'PX', ARGV[3])
return id
`)

// KEYS: delayed, wait. ARGV: now ms, batch size.
var promoteScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, tonumber(ARGV[2]))
for _, id in ipairs(ids) do
  redis.call('ZREM', KEYS[1], id)
  redis.call('LPUSH', KEYS[2], id)
end
return #ids
`)

// KEYS: active, wait. ARGV: lock key prefix.
// Returns the ids whose lease expired after moving them back to the head of wait.
var recoverScript = redis.NewScript(`
local ids = redis.call('LRANGE', KEYS[1], 0, -1)
local moved = {}
for _, id in ipairs(ids) do
  if redis.call('EXISTS', ARGV[1] .. id) == 0 then
    redis.call('LREM', KEYS[1], 1, id)
    redis.call('RPUSH', KEYS[2], id)
    table.insert(moved, id)
  end
end
return moved
`)
