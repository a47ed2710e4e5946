package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/born-ml/hkernel/internal/metrics"
)

func (a *App) newROCCommand() *cobra.Command {
	var (
		flags    trainFlags
		plotPath string
	)
	cmd := &cobra.Command{
		Use:   "roc",
		Short: "Fit, score a labelled test CSV and report the ROC AUC",
		Long: `Fit the classifier on --train, compute decision scores for the labelled
--test set and report the area under the ROC curve. The higher of the two
training classes is the positive class. --plot writes the curve as an
image whose format follows the file extension.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.testUnlabeled {
				return fmt.Errorf("roc needs a labelled test set")
			}
			s, err := a.fit(cmd, &flags)
			if err != nil {
				return err
			}
			defer s.close()

			scores, err := s.clf.DecisionFunction(s.testX)
			if err != nil {
				return fmt.Errorf("decision function: %w", err)
			}
			classes, _ := s.clf.Classes()

			points, err := metrics.ROC(scores, s.test.Y, classes[1])
			if err != nil {
				return err
			}
			auc := metrics.AUC(points)
			fmt.Fprintf(a.stdout, "auc: %.6f\n", auc)

			if plotPath != "" {
				if err := metrics.SaveROCPlot(points, auc, plotPath); err != nil {
					return err
				}
				a.logger.Info("saved ROC plot", "path", plotPath)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&plotPath, "plot", "", "write the ROC curve to this image file")
	return cmd
}
