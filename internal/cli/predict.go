package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/born-ml/hkernel/internal/metrics"
)

func (a *App) newPredictCommand() *cobra.Command {
	var (
		flags  trainFlags
		scores bool
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Fit on a training CSV and predict labels for a test CSV",
		Long: `Fit the classifier on --train and print one predicted label per row of
--test (or of the training set). With --scores the signed decision value
is printed next to each label. When the test set is labelled, accuracy is
reported on stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.fit(cmd, &flags)
			if err != nil {
				return err
			}
			defer s.close()

			labels, err := s.clf.Predict(s.testX)
			if err != nil {
				return fmt.Errorf("predict: %w", err)
			}
			var values []float64
			if scores {
				values, err = s.clf.DecisionFunction(s.testX)
				if err != nil {
					return fmt.Errorf("decision function: %w", err)
				}
			}

			if err := a.writePredictions(labels, values); err != nil {
				return err
			}

			if s.test.Labeled() {
				acc, err := metrics.Accuracy(s.test.Y, labels)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stderr, "accuracy: %.4f (%d samples)\n", acc, len(labels))
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&scores, "scores", false, "also print decision scores")
	return cmd
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writePredictions prints an aligned table on a terminal and plain CSV
// otherwise.
func (a *App) writePredictions(labels, scores []float64) error {
	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

	if !isTerminal(a.stdout) {
		for i, l := range labels {
			if scores != nil {
				fmt.Fprintf(a.stdout, "%s,%s\n", format(l), format(scores[i]))
			} else {
				fmt.Fprintln(a.stdout, format(l))
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	if scores != nil {
		fmt.Fprintln(tw, "ROW\tLABEL\tSCORE")
	} else {
		fmt.Fprintln(tw, "ROW\tLABEL")
	}
	for i, l := range labels {
		if scores != nil {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", i, format(l), format(scores[i]))
		} else {
			fmt.Fprintf(tw, "%d\t%s\n", i, format(l))
		}
	}
	return tw.Flush()
}
