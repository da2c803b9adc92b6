package dataprocessing

import (
	"sort"

	"taskdash/pkg/contracts/domain"
)

// CommunicationNetwork counts messages per (sender, recipient) as weighted
// directed edges, heaviest first. Messages missing either party are skipped.
func CommunicationNetwork(messages []domain.Message) domain.CommunicationNetwork {
	type pair struct{ sender, recipient string }

	weights := map[pair]int{}
	nodes := map[string]*domain.NetworkNode{}
	node := func(name string) *domain.NetworkNode {
		n, ok := nodes[name]
		if !ok {
			n = &domain.NetworkNode{Name: name}
			nodes[name] = n
		}
		return n
	}

	for _, m := range messages {
		if m.Sender == "" || m.Recipient == "" {
			continue
		}
		weights[pair{m.Sender, m.Recipient}]++
		node(m.Sender).Sent++
		node(m.Recipient).Received++
	}

	network := domain.CommunicationNetwork{
		Nodes: make([]domain.NetworkNode, 0, len(nodes)),
		Edges: make([]domain.NetworkEdge, 0, len(weights)),
	}
	for _, name := range sortedKeys(nodes) {
		network.Nodes = append(network.Nodes, *nodes[name])
	}
	for p, w := range weights {
		network.Edges = append(network.Edges, domain.NetworkEdge{Sender: p.sender, Recipient: p.recipient, Weight: w})
	}
	sort.Slice(network.Edges, func(i, j int) bool {
		a, b := network.Edges[i], network.Edges[j]
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		if a.Sender != b.Sender {
			return a.Sender < b.Sender
		}
		return a.Recipient < b.Recipient
	})

	return network
}

// CommunicationHistory returns the messages of one task, oldest first.
// Undated messages keep their file order after the dated ones. A task
// without messages gets the "no communication history" notice.
func CommunicationHistory(messages []domain.Message, taskID int) domain.CommunicationHistory {
	history := domain.CommunicationHistory{TaskID: taskID, Messages: []domain.Message{}}
	for _, m := range messages {
		if m.TaskID == taskID {
			history.Messages = append(history.Messages, m)
		}
	}

	sort.SliceStable(history.Messages, func(i, j int) bool {
		a, b := history.Messages[i].Date, history.Messages[j].Date
		if a.Valid() != b.Valid() {
			return a.Valid()
		}
		return a.Before(b.Time)
	})

	history.HasHistory = len(history.Messages) > 0
	if !history.HasHistory {
		history.Notice = domain.NoHistoryNotice
	}
	return history
}
