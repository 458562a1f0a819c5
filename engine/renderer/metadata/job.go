package metadata

import "github.com/google/uuid"

/** @brief The work function. Runs on a worker goroutine and must not touch registries or the backend. */
type JobStart func(params interface{}) (interface{}, error)

/** @brief Runs on the primary thread with the value returned by JobStart. */
type JobOnSuccess func(result interface{})

/** @brief Runs on the primary thread when JobStart failed. */
type JobOnFail func(params interface{}, err error)

/** @brief Describes a type of job */
type JobType int

const (
	/** @brief A general job that does not have any specific thread requirements. */
	JOB_TYPE_GENERAL JobType = 0x02
	/** @brief A resource loading job. */
	JOB_TYPE_RESOURCE_LOAD JobType = 0x04
)

/**
 * @brief Describes a job to be run.
 */
type JobInfo struct {
	ID uuid.UUID
	/** @brief The type of job. */
	JobType JobType
	/** @brief A function to be invoked when the job starts. Required. */
	EntryPoint JobStart
	/** @brief A function to be invoked when the job successfully completes. Optional. */
	OnSuccess JobOnSuccess
	/** @brief A function to be invoked when the job fails. Optional. */
	OnFail JobOnFail
	/** @brief Data to be passed to the entry point upon execution. */
	ParamData interface{}
}

/** @brief The outcome of a job, carried back to the primary thread. */
type JobResult struct {
	Job    JobInfo
	Result interface{}
	Err    error
}
