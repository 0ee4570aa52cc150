package indexer

// ProgressReporter provides callbacks for reporting indexing progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryStart is called when file discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(files int)

	// OnExtractionStart is called before extraction with the number of files that
	// miss the cache.
	OnExtractionStart(totalFiles int)

	// OnFileExtracted is called once per file, cached or not, in discovery order.
	OnFileExtracted(result FileResult)

	// OnComplete is called when indexing completes successfully.
	OnComplete(stats Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnDiscoveryStart()             {}
func (NoOpProgressReporter) OnDiscoveryComplete(files int) {}
func (NoOpProgressReporter) OnExtractionStart(total int)   {}
func (NoOpProgressReporter) OnFileExtracted(FileResult)    {}
func (NoOpProgressReporter) OnComplete(Stats)              {}
