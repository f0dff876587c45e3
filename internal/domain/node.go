package domain

// Node is a labeled property bag read from the graph.
type Node struct {
	Labels     []string
	Properties map[string]any
}

// PrimaryLabel returns the first label that is not structural.
func (n Node) PrimaryLabel() string {
	return PrimaryLabel(n.Labels)
}

// PrimaryLabel returns the first entry of labels other than LabelAccount.
func PrimaryLabel(labels []string) string {
	for _, label := range labels {
		if label != LabelAccount {
			return label
		}
	}
	return ""
}

// VisibleLabels returns labels without LabelAccount.
func VisibleLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		if label != LabelAccount {
			out = append(out, label)
		}
	}
	return out
}
