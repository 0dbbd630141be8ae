package pipeline

import "github.com/googleinterns/instant-motion-tracking/pkg/gen"

// SYNC-WATCHER-CHANNEL-SIZE
const WatcherChannelSize = 100

// Register to receive the state of every processed frame.
func (p *Pipeline) AddWatcher() chan *FrameState {
	p.watchersLock.Lock()
	defer p.watchersLock.Unlock()
	ch := make(chan *FrameState, WatcherChannelSize)
	p.watchers = append(p.watchers, ch)
	return ch
}

// Unregister from frame states
func (p *Pipeline) RemoveWatcher(ch chan *FrameState) {
	p.watchersLock.Lock()
	defer p.watchersLock.Unlock()
	for i, w := range p.watchers {
		if w == ch {
			p.watchers = gen.DeleteFromSliceUnordered(p.watchers, i)
			return
		}
	}
	p.Log.Warnf("Pipeline.RemoveWatcher failed to find channel")
}

func (p *Pipeline) sendToWatchers(state *FrameState) {
	p.watchersLock.RLock()
	// If a watcher stalls we drop frames for that watcher rather than stall
	// the pipeline, so one slow consumer can't hold back the others.
	for _, ch := range p.watchers {
		// SYNC-WATCHER-CHANNEL-SIZE
		if len(ch) >= cap(ch)*9/10 {
			p.Log.Warnf("Pipeline watcher is falling behind. I am going to drop frames.")
		} else {
			ch <- state
		}
	}
	p.watchersLock.RUnlock()
}
