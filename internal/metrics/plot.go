package metrics

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// SaveROCPlot renders a ROC curve with its chance diagonal to filename.
// The image format follows the file extension (png, svg, pdf, ...).
func SaveROCPlot(points []ROCPoint, auc float64, filename string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("ROC (AUC = %.4f)", auc)
	p.X.Label.Text = "False positive rate"
	p.Y.Label.Text = "True positive rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	pts := make(plotter.XYs, len(points))
	for i, pt := range points {
		pts[i] = plotter.XY{X: pt.FPR, Y: pt.TPR}
	}
	curve, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("roc line: %w", err)
	}
	curve.LineStyle.Width = vg.Points(2)

	chance, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return fmt.Errorf("chance line: %w", err)
	}
	chance.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	marks, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("roc points: %w", err)
	}
	marks.Shape = draw.CircleGlyph{}
	marks.Radius = vg.Points(1.5)

	p.Add(chance, curve, marks)
	p.Legend.Add("classifier", curve)
	p.Legend.Add("chance", chance)
	p.Legend.Top = false
	p.Legend.Left = false

	if err := p.Save(5*vg.Inch, 5*vg.Inch, filename); err != nil {
		return fmt.Errorf("save %s: %w", filename, err)
	}
	return nil
}
