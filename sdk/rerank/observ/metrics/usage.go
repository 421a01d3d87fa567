package metrics

type usage struct {
	documents *avgMetric
	tokens    *avgMetric
}

func newUsage(name string) *usage {
	return &usage{
		documents: newAvgMetric(name + "_documents"),
		tokens:    newAvgMetric(name + "_tokens"),
	}
}

func (u *usage) add(documents int, tokens int) {
	u.documents.add(float64(documents))
	u.tokens.add(float64(tokens))
}
