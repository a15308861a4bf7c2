package kernel

import "github.com/basinvm/basin/metrics"

// MaxChannelMessage bounds a single send or recv payload.
const MaxChannelMessage = 64 * 1024

// channelState is the lifecycle of a channel-table slot.
type channelState int

const (
	channelFree channelState = iota
	channelOpen
)

// channelEntry is one slot of the channel table. Messages pass as opaque
// byte slices; this version imposes bounds checks but no buffering, so a
// recv observes zero pending bytes.
type channelEntry struct {
	handle Handle
	state  channelState
}

// channelsOpen counts open channels, for the gauge.
func (k *Kernel) channelsOpen() int64 {
	n := int64(0)
	for i := range k.channels {
		if k.channels[i].state == channelOpen {
			n++
		}
	}
	return n
}

func (k *Kernel) findChannel(h Handle) *channelEntry {
	if h == InvalidHandle {
		return nil
	}
	for i := range k.channels {
		e := &k.channels[i]
		if e.state == channelOpen && e.handle == h {
			return e
		}
	}
	return nil
}

// sysChannelCreate implements syscall 17.
func (k *Kernel) sysChannelCreate() Result {
	for i := range k.channels {
		e := &k.channels[i]
		if e.state == channelFree {
			e.handle = k.allocHandle()
			e.state = channelOpen
			metrics.HandlesAllocated.Inc()
			metrics.ChannelsOpen.Set(k.channelsOpen())
			return Ok(uint64(e.handle))
		}
	}
	return Err(ErrOutOfMemory)
}

// sysChannelSend implements syscall 18. The payload is validated in full
// before anything happens; the bytes themselves go nowhere in this version.
func (k *Kernel) sysChannelSend(ch, buf, n uint64) Result {
	if n > MaxChannelMessage {
		return Err(ErrInvalidArgument)
	}
	if !k.mem.InRange(buf, n) {
		return Err(ErrInvalidArgument)
	}
	if k.findChannel(Handle(ch)) == nil {
		return Err(ErrNotFound)
	}
	return Ok(0)
}

// sysChannelRecv implements syscall 19. With no buffering there is never a
// pending message, so a valid recv reports zero bytes received.
func (k *Kernel) sysChannelRecv(ch, buf, n uint64) Result {
	if n > MaxChannelMessage {
		return Err(ErrInvalidArgument)
	}
	if !k.mem.InRange(buf, n) {
		return Err(ErrInvalidArgument)
	}
	if k.findChannel(Handle(ch)) == nil {
		return Err(ErrNotFound)
	}
	return Ok(0)
}

// closeChannel frees the slot for h if it names an open channel.
func (k *Kernel) closeChannel(h Handle) bool {
	e := k.findChannel(h)
	if e == nil {
		return false
	}
	*e = channelEntry{}
	metrics.ChannelsOpen.Set(k.channelsOpen())
	return true
}
