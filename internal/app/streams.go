package app

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/warden/console/internal/client"
	"github.com/warden/console/internal/views/debug"
	"github.com/warden/console/internal/views/status"
)

// startStreams dials every configured push channel.
func (m *Model) startStreams() tea.Cmd {
	var cmds []tea.Cmd
	for _, kind := range []client.StreamKind{client.KindSecurityEvent, client.KindHealthMetric, client.KindTrafficSample} {
		if cmd := m.listen(kind); cmd != nil {
			m.statusBar.Set(kind, status.ChannelConnecting)
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) stopStreams() {
	if m.sse != nil {
		m.sse.Close()
	}
	if m.health != nil {
		m.health.Close()
	}
	if m.traffic != nil {
		m.traffic.Close()
	}
}

func (m Model) listen(kind client.StreamKind) tea.Cmd {
	switch kind {
	case client.KindSecurityEvent:
		if m.sse != nil {
			return m.sse.Listen(m.ctx)
		}
	case client.KindHealthMetric:
		if m.health != nil {
			return m.health.Listen(m.ctx)
		}
	case client.KindTrafficSample:
		if m.traffic != nil {
			return m.traffic.Listen(m.ctx)
		}
	}
	return nil
}

// readNext re-arms the read loop of one channel.
func (m Model) readNext(kind client.StreamKind) tea.Cmd {
	switch kind {
	case client.KindSecurityEvent:
		if m.sse != nil {
			return m.sse.ReadLoop(m.ctx)
		}
	case client.KindHealthMetric:
		if m.health != nil {
			return m.health.ReadLoop(m.ctx)
		}
	case client.KindTrafficSample:
		if m.traffic != nil {
			return m.traffic.ReadLoop(m.ctx)
		}
	}
	return nil
}

// handleStream applies one push channel message. Messages arriving after
// logout are dropped.
func (m Model) handleStream(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode != ModeAdmin {
		return m, nil
	}

	switch msg := msg.(type) {
	case client.StreamConnectedMsg:
		m.statusBar.Set(msg.Kind, status.ChannelConnected)
		m.debugLog.Addf(debug.KindStream, "%s connected", msg.Kind)
		return m, m.readNext(msg.Kind)

	case client.StreamDisconnectedMsg:
		if !client.Retryable(msg.Err) {
			m.statusBar.Set(msg.Kind, status.ChannelFailed)
			m.debugLog.Addf(debug.KindError, "%s closed: %v", msg.Kind, msg.Err)
			slog.Error("push channel closed", "kind", msg.Kind, "err", msg.Err)
			return m, nil
		}
		m.statusBar.Set(msg.Kind, status.ChannelConnecting)
		m.debugLog.Addf(debug.KindStream, "%s dropped: %v", msg.Kind, msg.Err)
		slog.Warn("push channel dropped", "kind", msg.Kind, "err", msg.Err)
		return m, m.listen(msg.Kind)

	case client.StreamRejectedMsg:
		m.statusBar.Rejected++
		if msg.Kind == client.KindSecurityEvent {
			m.events.Rejected++
		}
		m.debugLog.Addf(debug.KindError, "%s rejected: %v", msg.Kind, msg.Err)
		slog.Warn("push message rejected", "kind", msg.Kind, "err", msg.Err)
		return m, m.readNext(msg.Kind)

	case client.SecurityEventMsg:
		m.events.Add(msg.Event)
		m.statusBar.Events = m.events.Len()
		return m, m.readNext(client.KindSecurityEvent)

	case client.HealthMsg:
		m.monitor.ApplyHealth(msg.Snapshot)
		return m, m.readNext(client.KindHealthMetric)

	case client.TrafficMsg:
		m.monitor.PushTraffic(msg.Sample)
		return m, m.readNext(client.KindTrafficSample)
	}
	return m, nil
}
