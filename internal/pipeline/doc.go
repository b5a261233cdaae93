// Package pipeline runs fetched URLs through the content phase.
//
// Each URL becomes a Job that passes through an ordered list of steps:
// fetch and extract the content, place and write the document, record
// it in the session history. Steps mutate the job in place and a step
// failure stops that job alone; other jobs keep flowing.
//
// The Processor bounds concurrency with errgroup.SetLimit, and Submit
// blocks while the limit is reached. Discovery calls Submit as pages
// come off the frontier, so the content phase backpressures discovery
// instead of queueing unbounded work.
package pipeline
