package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/duration"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/mensylisir/kubeboot/pkg/config"
)

var statusKubeconfig string

// statusCmd lists cluster nodes through the bootstrapped kubeconfig using
// the API client directly, as a richer alternative to `kubectl get nodes`.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the nodes of the bootstrapped cluster",
	RunE: func(cmd *cobra.Command, args []string) error {
		kubeconfigPath := statusKubeconfig
		if kubeconfigPath == "" {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			kubeconfigPath = cfg.KubeconfigPath
		}
		if _, err := os.Stat(kubeconfigPath); err != nil {
			return errors.Wrapf(err, "kubeconfig not found at %s, run `kubeboot up` first", kubeconfigPath)
		}

		restCfg, err := clientcmd.BuildConfigFromFlags("", kubeconfigPath)
		if err != nil {
			return errors.Wrapf(err, "failed to load kubeconfig %s", kubeconfigPath)
		}
		clientset, err := kubernetes.NewForConfig(restCfg)
		if err != nil {
			return errors.Wrap(err, "failed to create Kubernetes client")
		}

		nodes, err := clientset.CoreV1().Nodes().List(cmd.Context(), metav1.ListOptions{})
		if err != nil {
			return errors.Wrap(err, "failed to list nodes")
		}
		if len(nodes.Items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No nodes found.")
			return nil
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"NAME", "STATUS", "ROLES", "AGE", "VERSION", "INTERNAL-IP"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetCenterSeparator("")
		table.SetColumnSeparator("")
		table.SetRowSeparator("")
		table.SetHeaderLine(false)
		table.SetTablePadding("\t")
		table.SetNoWhiteSpace(true)

		for i := range nodes.Items {
			node := &nodes.Items[i]
			table.Append([]string{
				node.Name,
				nodeStatus(node),
				nodeRoles(node),
				duration.HumanDuration(time.Since(node.CreationTimestamp.Time)),
				node.Status.NodeInfo.KubeletVersion,
				nodeInternalIP(node),
			})
		}
		table.Render()
		return nil
	},
}

func nodeStatus(node *corev1.Node) string {
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			if cond.Status == corev1.ConditionTrue {
				return "Ready"
			}
			return "NotReady"
		}
	}
	return "Unknown"
}

func nodeRoles(node *corev1.Node) string {
	var roles []string
	for label := range node.Labels {
		if strings.HasPrefix(label, "node-role.kubernetes.io/") {
			if role := strings.TrimPrefix(label, "node-role.kubernetes.io/"); role != "" {
				roles = append(roles, role)
			}
		}
	}
	if len(roles) == 0 {
		return "<none>"
	}
	return strings.Join(roles, ",")
}

func nodeInternalIP(node *corev1.Node) string {
	for _, addr := range node.Status.Addresses {
		if addr.Type == corev1.NodeInternalIP {
			return addr.Address
		}
	}
	return "None"
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusKubeconfig, "kubeconfig", "", "Path to the kubeconfig file (default is the bootstrapped one)")
}
