package notification

const statusChangeTemplate = `<!DOCTYPE html>
<html>
<body>
  <h2>Shipment {{.ShippingNumber}}</h2>
  <p>Status changed to <strong>{{.Status}}</strong></p>
  <table>
    <tr><td>Shipment ID</td><td>{{.ShipmentID}}</td></tr>
    {{if .TrackingNumber}}<tr><td>Tracking number</td><td>{{.TrackingNumber}}</td></tr>{{end}}
    {{if .CourierName}}<tr><td>Courier</td><td>{{.CourierName}}</td></tr>{{end}}
  </table>
  {{if .ShipFrom}}
  <h3>From</h3>
  <p>{{.ShipFrom.GetString "name"}}<br>
     {{.ShipFrom.GetString "address_line"}}<br>
     {{.ShipFrom.GetString "city"}} {{.ShipFrom.GetString "country"}}<br>
     {{.ShipFrom.GetString "phone"}}</p>
  {{end}}
  {{if .ShipTo}}
  <h3>To</h3>
  <p>{{.ShipTo.GetString "name"}}<br>
     {{.ShipTo.GetString "address_line"}}<br>
     {{.ShipTo.GetString "city"}} {{.ShipTo.GetString "country"}}<br>
     {{.ShipTo.GetString "phone"}}</p>
  {{end}}
</body>
</html>`
