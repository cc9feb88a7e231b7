/*
Package domain contains the core domain models for the sceneflow orchestrator.

It defines the vocabulary shared by the orchestrator, the presenter and the host adapters:
scene selectors, transition requests, the per-transition phase machine, progress
normalization and the events published while a transition runs. This package is kept pure
and free of external dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Selector: Identifies a target scene by build index or by name (never both).
  - TransitionRequest: An immutable navigation request (target, load mode, gating).
  - Phase: The lifecycle of a single transition, from Requested to Done.
  - Event: A progress or lifecycle notification delivered to subscribers.
  - TransitionRecord: The journal entry written when a transition reaches a terminal phase.
*/
package domain
