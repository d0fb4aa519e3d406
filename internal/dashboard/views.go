// Package dashboard renders the seven segmentation views as terminal text, as
// an HTML dashboard and as a PNG scatter.
package dashboard

import (
	"fmt"
	"strings"
)

// View is one entry of the menu; exactly one is shown at a time.
type View string

const (
	ViewDescription View = "description"
	ViewSource      View = "source"
	ViewAuthor      View = "author"
	ViewDataset     View = "dataset"
	ViewVisualize   View = "visualize"
	ViewAlgorithm   View = "algorithm"
	ViewClusters    View = "clusters"
)

// Need says how much of the pipeline a view requires.
type Need int

const (
	NeedNothing Need = iota
	NeedData
	NeedModel
)

var views = []View{
	ViewDescription, ViewSource, ViewAuthor, ViewDataset,
	ViewVisualize, ViewAlgorithm, ViewClusters,
}

var titles = map[View]string{
	ViewDescription: "Description",
	ViewSource:      "Dataset Source",
	ViewAuthor:      "Author",
	ViewDataset:     "View Dataset",
	ViewVisualize:   "Data Visualization",
	ViewAlgorithm:   "Algorithm Overview",
	ViewClusters:    "Clustering Results",
}

// AppTitle heads every rendering.
const AppTitle = "Mall Customer Segmentation Analysis"

// Views returns the menu in display order.
func Views() []View { return append([]View(nil), views...) }

// ParseView accepts a view key or its title, case-insensitively.
func ParseView(s string) (View, error) {
	s = strings.TrimSpace(s)
	for _, v := range views {
		if strings.EqualFold(s, string(v)) || strings.EqualFold(s, titles[v]) {
			return v, nil
		}
	}
	keys := make([]string, len(views))
	for i, v := range views {
		keys[i] = string(v)
	}
	return "", fmt.Errorf("unknown view %q (choose one of %s)", s, strings.Join(keys, ", "))
}

// Title is the menu label of v.
func (v View) Title() string { return titles[v] }

// Needs reports which pipeline stages v depends on.
func (v View) Needs() Need {
	switch v {
	case ViewDataset, ViewVisualize:
		return NeedData
	case ViewClusters:
		return NeedModel
	default:
		return NeedNothing
	}
}

// Page is the static text of an informational view.
type Page struct {
	Heading    string
	Paragraphs []string
	Bullets    []string
}

var pages = map[View]Page{
	ViewDescription: {
		Heading: "Project Description",
		Paragraphs: []string{
			"This application uses K-Means clustering to segment mall customers by age, annual income and spending score.",
			"The dataset comes from Kaggle and holds mall customer records, including their age, annual income and spending score.",
		},
	},
	ViewSource: {
		Heading: "Dataset Source",
		Paragraphs: []string{
			"The dataset is taken from Kaggle (https://www.kaggle.com/code/vitaaprilia/analysis-segmentation-customer-mall/input). It holds mall customer records with the following attributes:",
		},
		Bullets: []string{
			"Age: customer age",
			"Annual Income (k$): annual income in thousands of dollars",
			"Spending Score (1-100): spending score assigned by the mall",
			"Gender: customer gender (Male/Female)",
		},
	},
	ViewAuthor: {
		Heading: "Author",
		Paragraphs: []string{
			"This project was made by Ranto. It aims to give insight into mall customer segments using K-Means clustering.",
		},
	},
	ViewAlgorithm: {
		Heading: "K-Means Clustering Overview",
		Paragraphs: []string{
			"K-Means is an unsupervised learning algorithm that groups data points by the similarity of their features.",
			"Here it groups mall customers on three features: age, annual income and spending score. Features are standardized to zero mean and unit variance, centres are seeded with k-means++, and points are reassigned to their nearest centre until the assignment stabilizes.",
			"The model looks for structure in unlabelled data and splits it into a fixed number of clusters, six in this case.",
		},
	},
}

// StaticPage returns the text of an informational view.
func StaticPage(v View) (Page, bool) {
	p, ok := pages[v]
	return p, ok
}
