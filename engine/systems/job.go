package systems

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spaghettifunk/kiln/engine/containers"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer/metadata"
)

// JobSystem runs job entry points on a pool of workers. Callbacks never run on a
// worker: results are queued and Update runs OnSuccess/OnFail on the calling
// goroutine, which is the primary thread.
type JobSystem struct {
	numWorkers int
	jobQueue   chan metadata.JobInfo
	results    chan metadata.JobResult
	// parked holds jobs submitted while the queue was full. Only the primary thread touches it.
	parked *containers.RingQueue[metadata.JobInfo]

	mutex    sync.Mutex
	inFlight int
	closed   bool

	wg sync.WaitGroup
}

var ErrNoWorkers = errors.Wrap(core.ErrConfig, "attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = errors.Wrap(core.ErrConfig, "attempting to create worker pool with a negative channel size")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan metadata.JobInfo, channelSize),
		// Workers never block on delivery: at most channelSize queued plus one per worker can be done.
		results: make(chan metadata.JobResult, channelSize+numWorkers),
		parked:  containers.NewRingQueue[metadata.JobInfo](channelSize + numWorkers),
	}
	js.start()

	core.LogInfo("Job system started with %d workers.", numWorkers)
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.results <- js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job metadata.JobInfo) (result metadata.JobResult) {
	result.Job = job
	defer func() {
		if r := recover(); r != nil {
			result.Err = errors.Newf("job %s panicked: %v", job.ID, r)
		}
	}()
	result.Result, result.Err = job.EntryPoint(job.ParamData)
	return result
}

/**
 * @brief Shuts the job system down. Jobs still queued are run, their
 * callbacks are dropped.
 */
func (js *JobSystem) Shutdown() error {
	js.mutex.Lock()
	if js.closed {
		js.mutex.Unlock()
		return nil
	}
	js.closed = true
	js.mutex.Unlock()

	close(js.jobQueue)
	// Workers may be blocked delivering results nobody will drain anymore.
	done := make(chan struct{})
	go func() {
		js.wg.Wait()
		close(done)
	}()
	for {
		select {
		case <-js.results:
		case <-done:
			return nil
		}
	}
}

// CreateJob fills a JobInfo with a fresh id.
func (js *JobSystem) CreateJob(entryPoint metadata.JobStart, onSuccess metadata.JobOnSuccess, onFail metadata.JobOnFail, params interface{}) metadata.JobInfo {
	return metadata.JobInfo{
		ID:         uuid.New(),
		JobType:    metadata.JOB_TYPE_GENERAL,
		EntryPoint: entryPoint,
		OnSuccess:  onSuccess,
		OnFail:     onFail,
		ParamData:  params,
	}
}

/**
 * @brief Submits the provided job to be queued for execution. Never blocks: when
 * the queue is full the job is parked until the next Update.
 */
func (js *JobSystem) Submit(job metadata.JobInfo) error {
	if job.EntryPoint == nil {
		return errors.Wrapf(core.ErrConsistency, "job %s has no entry point", job.ID)
	}
	js.mutex.Lock()
	defer js.mutex.Unlock()
	if js.closed {
		return errors.Wrap(core.ErrInvalidState, "job system is shut down")
	}

	js.inFlight++
	if js.parked.IsEmpty() {
		select {
		case js.jobQueue <- job:
			return nil
		default:
		}
	}
	if err := js.parked.Enqueue(job); err != nil {
		// The ring is full too, grow it.
		grown := containers.NewRingQueue[metadata.JobInfo](js.parked.Len() * 2)
		for !js.parked.IsEmpty() {
			j, _ := js.parked.Dequeue()
			_ = grown.Enqueue(j)
		}
		_ = grown.Enqueue(job)
		js.parked = grown
	}
	return nil
}

/**
 * @brief Updates the job system. Should happen once an update cycle, on the
 * primary thread. Moves parked jobs to the workers and runs the callbacks of
 * every finished job.
 */
func (js *JobSystem) Update() {
	js.flushParked()
	for {
		select {
		case res := <-js.results:
			js.complete(res)
		default:
			return
		}
	}
}

func (js *JobSystem) flushParked() {
	js.mutex.Lock()
	defer js.mutex.Unlock()
	if js.closed {
		return
	}
	for !js.parked.IsEmpty() {
		job, _ := js.parked.Peek()
		select {
		case js.jobQueue <- job:
			_, _ = js.parked.Dequeue()
		default:
			return
		}
	}
}

func (js *JobSystem) complete(res metadata.JobResult) {
	js.mutex.Lock()
	js.inFlight--
	js.mutex.Unlock()

	if res.Err != nil {
		core.LogError("job %s failed: %v", res.Job.ID, res.Err)
		if res.Job.OnFail != nil {
			res.Job.OnFail(res.Job.ParamData, res.Err)
		}
		return
	}
	if res.Job.OnSuccess != nil {
		res.Job.OnSuccess(res.Result)
	}
}

// Pending is the number of submitted jobs whose callbacks have not run yet.
func (js *JobSystem) Pending() int {
	js.mutex.Lock()
	defer js.mutex.Unlock()
	return js.inFlight
}
