package commands

import (
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/csapi/pkg/csapi"
)

// jobView is the printable form of an asynchronous job.
type jobView struct {
	JobID      string      `json:"jobid"                   yaml:"jobid"`
	Status     string      `json:"status"                  yaml:"status"`
	ResultCode int         `json:"jobresultcode"           yaml:"jobresultcode"`
	ResultType string      `json:"jobresulttype,omitempty" yaml:"jobresulttype,omitempty"`
	Command    string      `json:"cmd,omitempty"           yaml:"cmd,omitempty"`
	Created    string      `json:"created,omitempty"       yaml:"created,omitempty"`
	Result     interface{} `json:"jobresult,omitempty"     yaml:"jobresult,omitempty"`
}

func newJobView(job *csapi.AsyncJob) (*jobView, error) {
	result, err := rawValue(job.Result)
	if err != nil {
		return nil, err
	}

	return &jobView{
		JobID:      job.JobID,
		Status:     job.Status.String(),
		ResultCode: job.ResultCode,
		ResultType: job.ResultType,
		Command:    job.Command,
		Created:    job.Created,
		Result:     result,
	}, nil
}

// NewJobsCommand creates the jobs command group.
func NewJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Manage asynchronous jobs",
		Long:    "Query and wait for CloudStack asynchronous jobs",
	}

	cmd.AddCommand(newJobsGetCommand())
	cmd.AddCommand(newJobsPollCommand())

	return cmd
}

func newJobsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get JOB_ID",
		Short: "Get job status",
		Long:  "Query the current status of an asynchronous job once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			job, err := client.Jobs().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return renderJob(cmd, job)
		},
	}
}

func newJobsPollCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "poll JOB_ID",
		Short: "Wait for a job to complete",
		Long:  "Poll an asynchronous job until it succeeds, fails or the timeout elapses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			var job *csapi.AsyncJob
			if timeout > 0 {
				job, err = client.Jobs().PollWithTimeout(cmd.Context(), args[0], timeout)
			} else {
				job, err = client.Jobs().PollUntilComplete(cmd.Context(), args[0])
			}

			if job != nil {
				renderErr := renderJob(cmd, job)
				if err == nil {
					err = renderErr
				}
			}

			return err
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "poll timeout (default: the configured poll timeout)")

	return cmd
}

func renderJob(cmd *cobra.Command, job *csapi.AsyncJob) error {
	view, err := newJobView(job)
	if err != nil {
		return err
	}

	return render(cmd, view, func(w io.Writer) error {
		rows := [][]string{
			{"Job ID", job.JobID},
			{"Status", job.Status.String()},
			{"Result Code", strconv.Itoa(job.ResultCode)},
			{"Command", valueOr(job.Command)},
			{"Created", valueOr(job.Created)},
		}

		if text := job.ErrorText(); text != "" {
			rows = append(rows, []string{"Error", text})
		}

		return renderProperties(w, rows)
	})
}
