package main

import (
	"sync/atomic"

	"aura/appstate"
	"aura/log"
	"aura/orchestrator"
)

// fanout delivers orchestrator output to every display and the log.
type fanout []orchestrator.Sink

func newFanout(sinks ...orchestrator.Sink) fanout {
	var f fanout
	for _, s := range sinks {
		if s != nil {
			f = append(f, s)
		}
	}
	return f
}

func (f fanout) StateChanged(from, to appstate.State) {
	for _, s := range f {
		s.StateChanged(from, to)
	}
}

func (f fanout) Transcript(text string) {
	for _, s := range f {
		s.Transcript(text)
	}
}

func (f fanout) Loudness(level float64) {
	for _, s := range f {
		s.Loudness(level)
	}
}

func (f fanout) CapabilityError(err error) {
	for _, s := range f {
		s.CapabilityError(err)
	}
}

func (f fanout) NoVoiceWarning(active bool) {
	for _, s := range f {
		s.NoVoiceWarning(active)
	}
}

var transcriptCount atomic.Int64

// logSink writes transitions to the diagnostics log and transcripts to
// the transcript log.
type logSink struct{}

func (logSink) StateChanged(from, to appstate.State) { log.Transition(from.String(), to.String()) }

func (logSink) Transcript(text string) {
	transcriptCount.Add(1)
	log.TranscriptText(text)
}

func (logSink) Loudness(float64) {}

func (logSink) CapabilityError(err error) { log.Warnf("capability: %v", err) }

func (logSink) NoVoiceWarning(active bool) {
	if active {
		log.Warn("no voice detected")
	}
}
