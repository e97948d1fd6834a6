package console

// Playback replays whatever the slot holds. It never touches request state.
type Playback struct {
	slot     *AudioSlot
	notifier *Notifier
	player   Player
	recorder Recorder
}

func NewPlayback(slot *AudioSlot, notifier *Notifier, player Player) *Playback {
	return &Playback{slot: slot, notifier: notifier, player: player, recorder: nopRecorder{}}
}

func (p *Playback) Replay() error {
	res, ok := p.slot.Get()
	if !ok {
		p.notifier.Notify(ErrPlaybackUnavailable.Error(), SeverityError)
		p.recorder.ObserveReplay("unavailable")
		return ErrPlaybackUnavailable
	}
	p.notifier.Notify(msgPlayingLast, SeverityNormal)
	if p.player != nil {
		p.player.Play(res.AudioRef)
	}
	p.recorder.ObserveReplay("played")
	return nil
}
