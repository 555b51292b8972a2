// Package services provides domain services that orchestrate business operations
// across several aggregates. They implement workflows that don't naturally belong
// to a single aggregate root.
//
// The package includes:
//   - RouteLifecycle: drives a route, the orders on its stops and their clients'
//     loyalty through the delivery workflow and reports the resulting events
//   - ChatFanOut: addresses chat messages to the route's audiences
//
// Domain services are pure: they never persist or notify. Command handlers
// persist what they report inside one unit of work and dispatch events after commit.
package services
